package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Question is a trivia question stored as structured columns: text, ordered
// options, the index of the correct option, and an optional explanation shown
// after answering. Option order is meaningful; it defines the index space for
// CorrectIndex.
type Question struct {
	ID           uuid.UUID  `json:"id"`
	Text         string     `json:"text"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correct_index"`
	Explanation  string     `json:"explanation,omitempty"`
	Archived     bool       `json:"archived"`
	SendCount    int        `json:"send_count"`
	LastSentAt   *time.Time `json:"last_sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Validate checks the correct-index invariant and Telegram poll limits.
func (q *Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question needs at least 2 options, got %d", len(q.Options))
	}
	if len(q.Options) > 10 {
		return fmt.Errorf("question has %d options, Telegram allows at most 10", len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range [0,%d)", q.CorrectIndex, len(q.Options))
	}
	return nil
}
