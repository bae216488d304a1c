// Package domain defines the core value types shared across the ingestion pipeline.
package domain

import "encoding/json"

// UserProfile is the immutable reference record for one user, loaded once at startup.
type UserProfile struct {
	UserID       string      `json:"user_id"`
	Name         string      `json:"name"`
	Age          json.Number `json:"age"`
	Gender       string      `json:"gender"`
	Height       json.Number `json:"height"`
	Weight       json.Number `json:"weight"`
	FitnessLevel string      `json:"fitness_level"`
}

// DayKey identifies one user on one calendar date.
type DayKey struct {
	UserID string
	Date   string // YYYY-MM-DD
}

// Summary is the immutable rendering of one user-day, consumed exactly once by the dispatcher.
type Summary struct {
	UserID string
	Date   string
	Text   string
}
