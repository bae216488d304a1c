package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrBadAck indicates the service answered with a success status but the
// body did not carry the expected acknowledgement.
var ErrBadAck = errors.New("acknowledgement missing or not ok")

// HTTPConfig contains tunables for the HTTP sink.
type HTTPConfig struct {
	URL             string
	RequestTimeout  time.Duration // Total budget per delivery attempt.
	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration // Time allowed for response headers to arrive.
}

// HTTPSink posts summaries to the ingestion endpoint.
type HTTPSink struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSink constructs a sink with sane default timeouts where the config
// leaves them zero.
func NewHTTPSink(cfg HTTPConfig) *HTTPSink {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = 30 * time.Second
	}
	return &HTTPSink{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
				ResponseHeaderTimeout: cfg.ResponseTimeout,
			},
		},
	}
}

// Ingest posts one summary. Delivery succeeds only when the service answers
// 200 or 201 and the body acknowledges with status "ok"; everything else is
// an error the caller may retry.
func (s *HTTPSink) Ingest(ctx context.Context, text string, meta Metadata) error {
	body, err := EncodePayload(text, meta)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("sink returned %d: %s", resp.StatusCode, snippet)
	}

	var ack struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("%w: %v", ErrBadAck, err)
	}
	if ack.Status != "ok" {
		return fmt.Errorf("%w: status=%q", ErrBadAck, ack.Status)
	}
	return nil
}
