package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/sink"
)

func summaries(n int) []domain.Summary {
	out := make([]domain.Summary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Summary{
			UserID: fmt.Sprintf("u%d", i),
			Date:   "2024-01-15",
			Text:   fmt.Sprintf("summary %d", i),
		})
	}
	return out
}

func newTestDispatcher(t *testing.T, s sink.Sink, cfg Config) *Dispatcher {
	t.Helper()
	return New(s, cfg, WithLogger(log.New(testWriter{t}, "", 0)))
}

// trackingSink records concurrency and the number of settled deliveries
// observed at the start of each call.
type trackingSink struct {
	mu               sync.Mutex
	delay            time.Duration
	inFlight         int
	maxInFlight      int
	settled          int
	settledAtStart   []int
	failFor          map[string]bool
	callsPerUser     map[string]int
	succeedOnAttempt int // 0 means always succeed unless failFor matches
}

func (s *trackingSink) Ingest(_ context.Context, _ string, meta sink.Metadata) error {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.settledAtStart = append(s.settledAtStart, s.settled)
	if s.callsPerUser == nil {
		s.callsPerUser = make(map[string]int)
	}
	s.callsPerUser[meta.UserID]++
	attempt := s.callsPerUser[meta.UserID]
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.inFlight--
	s.settled++
	s.mu.Unlock()

	if s.failFor[meta.UserID] {
		return errors.New("sink unavailable")
	}
	if s.succeedOnAttempt > 0 && attempt < s.succeedOnAttempt {
		return errors.New("sink unavailable")
	}
	return nil
}

func TestDispatcherBuffersUntilBatchSize(t *testing.T) {
	tracker := &trackingSink{}
	d := newTestDispatcher(t, tracker, Config{BatchSize: 3, MaxConcurrency: 2, MaxAttempts: 1, BaseDelay: time.Millisecond})
	ctx := context.Background()

	items := summaries(5)
	for _, item := range items[:2] {
		d.Enqueue(ctx, item)
	}
	require.Zero(t, d.Stats().Delivered)

	d.Enqueue(ctx, items[2]) // third item fills the batch
	require.Equal(t, int64(3), d.Stats().Delivered)

	d.Enqueue(ctx, items[3])
	d.Enqueue(ctx, items[4])
	d.Flush(ctx)
	require.Equal(t, int64(5), d.Stats().Delivered)
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	tracker := &trackingSink{delay: 20 * time.Millisecond}
	d := newTestDispatcher(t, tracker, Config{BatchSize: 20, MaxConcurrency: 4, MaxAttempts: 1, BaseDelay: time.Millisecond})

	ctx := context.Background()
	for _, item := range summaries(20) {
		d.Enqueue(ctx, item)
	}

	require.Equal(t, int64(20), d.Stats().Delivered)
	require.LessOrEqual(t, tracker.maxInFlight, 4)
}

func TestDispatcherChunkBarrier(t *testing.T) {
	tracker := &trackingSink{delay: 10 * time.Millisecond}
	d := newTestDispatcher(t, tracker, Config{BatchSize: 12, MaxConcurrency: 4, MaxAttempts: 1, BaseDelay: time.Millisecond})

	ctx := context.Background()
	for _, item := range summaries(12) {
		d.Enqueue(ctx, item)
	}

	// Every delivery in chunk N settles before chunk N+1 starts, so a call
	// in chunk N sees at least N full chunks already settled.
	require.Len(t, tracker.settledAtStart, 12)
	for i, settled := range tracker.settledAtStart {
		require.GreaterOrEqual(t, settled, (i/4)*4, "call %d started before the previous chunk settled", i)
	}
	require.LessOrEqual(t, tracker.maxInFlight, 4)
}

func TestDispatcherRetriesUntilAcknowledged(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	httpSink := sink.NewHTTPSink(sink.HTTPConfig{URL: server.URL})
	d := newTestDispatcher(t, httpSink, Config{BatchSize: 1, MaxConcurrency: 1, MaxAttempts: 3, BaseDelay: time.Millisecond})

	d.Enqueue(context.Background(), domain.Summary{UserID: "u1", Date: "2024-01-15", Text: "summary"})

	require.Equal(t, int32(3), attempts.Load())
	stats := d.Stats()
	require.Equal(t, int64(1), stats.Delivered)
	require.Equal(t, int64(2), stats.Retried)
	require.Zero(t, stats.Failed)
}

func TestDispatcherCountsPermanentFailureAndContinues(t *testing.T) {
	tracker := &trackingSink{failFor: map[string]bool{"u0": true}}
	d := newTestDispatcher(t, tracker, Config{BatchSize: 3, MaxConcurrency: 1, MaxAttempts: 2, BaseDelay: time.Millisecond})

	ctx := context.Background()
	for _, item := range summaries(3) {
		d.Enqueue(ctx, item)
	}

	stats := d.Stats()
	require.Equal(t, int64(1), stats.Failed)
	require.Equal(t, int64(2), stats.Delivered)
	require.Equal(t, 2, tracker.callsPerUser["u0"]) // both attempts exhausted
}

func TestDispatcherRetrySucceedsOnLaterAttempt(t *testing.T) {
	tracker := &trackingSink{succeedOnAttempt: 2}
	d := newTestDispatcher(t, tracker, Config{BatchSize: 1, MaxConcurrency: 1, MaxAttempts: 3, BaseDelay: time.Millisecond})

	d.Enqueue(context.Background(), summaries(1)[0])

	stats := d.Stats()
	require.Equal(t, int64(1), stats.Delivered)
	require.Equal(t, int64(1), stats.Retried)
	require.Zero(t, stats.Failed)
}

func TestDispatcherPrintModeSkipsRetryMachinery(t *testing.T) {
	var out safeBuffer
	d := newTestDispatcher(t, sink.NewPrintSink(&out), Config{BatchSize: 2, MaxConcurrency: 2, MaxAttempts: 3, BaseDelay: time.Second})

	ctx := context.Background()
	start := time.Now()
	for _, item := range summaries(2) {
		d.Enqueue(ctx, item)
	}

	// A print sink never fails, so no backoff sleeps happen.
	require.Less(t, time.Since(start), time.Second)
	stats := d.Stats()
	require.Equal(t, int64(2), stats.Delivered)
	require.Zero(t, stats.Retried)
	require.Contains(t, out.String(), "[u0 - 2024-01-15]")
	require.Contains(t, out.String(), "[u1 - 2024-01-15]")
}

func TestBackoffDelayGrowsWithAttempt(t *testing.T) {
	d := New(&trackingSink{}, Config{BaseDelay: 500 * time.Millisecond})

	require.Equal(t, 500*time.Millisecond, d.backoffDelay(1))
	require.Equal(t, time.Second, d.backoffDelay(2))
	require.Equal(t, 2*time.Second, d.backoffDelay(3))
	require.Equal(t, time.Minute, d.backoffDelay(20)) // capped
}

// safeBuffer is a minimal concurrency-safe writer for concurrent print sinks.
type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
