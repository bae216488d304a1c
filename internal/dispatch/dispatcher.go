// Package dispatch batches summaries and delivers them to the sink under
// bounded concurrency with retry on failure.
package dispatch

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/sink"
)

// Outcome is the terminal state of one summary delivery.
type Outcome int

const (
	// OutcomeAcknowledged means the sink confirmed the summary.
	OutcomeAcknowledged Outcome = iota
	// OutcomePermanentlyFailed means every attempt was exhausted.
	OutcomePermanentlyFailed
)

// Config contains dispatcher tunables.
type Config struct {
	BatchSize      int           // Summaries buffered before dispatch. Default 100.
	MaxConcurrency int           // In-flight deliveries per chunk. Default 10.
	MaxAttempts    int           // Total attempts per summary. Default 3.
	BaseDelay      time.Duration // Backoff base. Default 500ms.
}

// Option configures optional behaviour for the Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the logger used to report batch progress.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// Dispatcher buffers summaries into batches and drives their delivery. A
// batch is split into chunks of at most MaxConcurrency deliveries; each
// chunk is issued concurrently and fully settled before the next chunk
// starts, so no more than one chunk's worth of requests is ever in flight.
type Dispatcher struct {
	sink           sink.Sink
	batchSize      int
	maxConcurrency int
	maxAttempts    int
	baseDelay      time.Duration
	buf            []domain.Summary
	delivered      atomic.Int64
	failed         atomic.Int64
	retried        atomic.Int64
	logger         *log.Logger
}

// New constructs a Dispatcher delivering through s.
func New(s sink.Sink, cfg Config, opts ...Option) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	d := &Dispatcher{
		sink:           s,
		batchSize:      cfg.BatchSize,
		maxConcurrency: cfg.MaxConcurrency,
		maxAttempts:    cfg.MaxAttempts,
		baseDelay:      cfg.BaseDelay,
		logger:         log.New(log.Writer(), "[dispatch] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue buffers one summary, dispatching a batch once the buffer is full.
// Ownership of the summary transfers to the dispatcher.
func (d *Dispatcher) Enqueue(ctx context.Context, s domain.Summary) {
	d.buf = append(d.buf, s)
	if len(d.buf) >= d.batchSize {
		batch := d.buf
		d.buf = nil
		d.dispatchBatch(ctx, batch)
	}
}

// Flush dispatches any buffered remainder. Called once at end-of-input.
func (d *Dispatcher) Flush(ctx context.Context) {
	if len(d.buf) == 0 {
		return
	}
	batch := d.buf
	d.buf = nil
	d.dispatchBatch(ctx, batch)
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, batch []domain.Summary) {
	d.logger.Printf("dispatching batch of %d summaries", len(batch))
	batchesCounter.Inc()

	for start := 0; start < len(batch); start += d.maxConcurrency {
		end := min(start+d.maxConcurrency, len(batch))
		d.dispatchChunk(ctx, batch[start:end])
	}
}

// dispatchChunk issues every delivery in the chunk concurrently and blocks
// until all of them settle. The wait acts as the chunk barrier.
func (d *Dispatcher) dispatchChunk(ctx context.Context, items []domain.Summary) {
	start := time.Now()

	var wg sync.WaitGroup
	var acked atomic.Int64
	for _, item := range items {
		wg.Add(1)
		go func(item domain.Summary) {
			defer wg.Done()
			if d.deliver(ctx, item) == OutcomeAcknowledged {
				acked.Add(1)
				d.delivered.Add(1)
				deliveredCounter.Inc()
			} else {
				d.failed.Add(1)
				failedCounter.Inc()
			}
		}(item)
	}
	wg.Wait()

	chunkDuration.Observe(time.Since(start).Seconds())
	d.logger.Printf("chunk completed: %d/%d successful", acked.Load(), len(items))
}

// deliver drives one summary through its attempt loop. A summary that fails
// every attempt is terminal for this run; it never aborts the batch.
func (d *Dispatcher) deliver(ctx context.Context, item domain.Summary) Outcome {
	meta := sink.Metadata{UserID: item.UserID, Date: item.Date, Type: sink.TypeDailySummary}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.sink.Ingest(ctx, item.Text, meta)
		if err == nil {
			return OutcomeAcknowledged
		}

		if attempt == d.maxAttempts {
			d.logger.Printf("failed after %d attempts for %s on %s: %v", d.maxAttempts, item.UserID, item.Date, err)
			break
		}

		d.retried.Add(1)
		retriesCounter.Inc()
		d.logger.Printf("retry %d/%d for %s on %s (%v)", attempt, d.maxAttempts, item.UserID, item.Date, err)

		select {
		case <-ctx.Done():
			return OutcomePermanentlyFailed
		case <-time.After(d.backoffDelay(attempt)):
		}
	}
	return OutcomePermanentlyFailed
}

// backoffDelay calculates exponential backoff capped at one minute.
func (d *Dispatcher) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt-1)) * d.baseDelay
	if delay > time.Minute {
		delay = time.Minute
	}
	return delay
}

// Stats is a snapshot of delivery counters.
type Stats struct {
	Delivered int64
	Failed    int64
	Retried   int64
}

// Stats returns the current delivery counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Retried:   d.retried.Load(),
	}
}
