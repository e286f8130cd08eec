package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one reconciled poll response. Immutable once written; at most one
// per (poll, user) pair, enforced by a unique index.
type Answer struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	PollID        uuid.UUID `json:"poll_id"`
	SelectedIndex int       `json:"selected_index"`
	IsCorrect     bool      `json:"is_correct"`
	PointsAwarded int       `json:"points_awarded"`
	AnsweredAt    time.Time `json:"answered_at"`
}
