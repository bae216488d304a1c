package sink

import (
	"context"
	"fmt"
	"io"
)

const previewLength = 150

// PrintSink renders the would-be payload locally instead of calling the
// ingestion service. Useful for dry-run verification; it never fails, so no
// retry or backoff ever triggers in this mode.
type PrintSink struct {
	out io.Writer
}

// NewPrintSink writes previews to out.
func NewPrintSink(out io.Writer) *PrintSink {
	return &PrintSink{out: out}
}

// Ingest encodes the payload exactly as the HTTP sink would, then prints a
// truncated preview of the summary text.
func (s *PrintSink) Ingest(_ context.Context, text string, meta Metadata) error {
	if _, err := EncodePayload(text, meta); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	preview := text
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	_, err := fmt.Fprintf(s.out, "[%s - %s] %s...\n", meta.UserID, meta.Date, preview)
	return err
}
