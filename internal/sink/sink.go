// Package sink delivers finished summaries to the external ingestion service.
package sink

import (
	"context"
	"encoding/json"
)

// TypeDailySummary is the metadata type stamped on every summary payload.
const TypeDailySummary = "daily_summary"

// Metadata accompanies a summary on the wire.
type Metadata struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Type   string `json:"type"`
}

// Payload is the wire format accepted by the ingestion endpoint.
type Payload struct {
	Text string   `json:"text"`
	Meta Metadata `json:"meta"`
}

// EncodePayload serialises a summary payload. Both the live and the print
// sink encode through here, so a dry run shows exactly the bytes a live run
// would send.
func EncodePayload(text string, meta Metadata) ([]byte, error) {
	return json.Marshal(Payload{Text: text, Meta: meta})
}

// Sink accepts one summary per call. A nil error means the service
// acknowledged the summary; any error is retryable from the caller's point
// of view.
type Sink interface {
	Ingest(ctx context.Context, text string, meta Metadata) error
}
