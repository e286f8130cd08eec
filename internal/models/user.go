package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a Telegram player tracked by the ledger. Created lazily on first
// answer (or first group join) and keyed by the Telegram user id.
type User struct {
	ID           uuid.UUID `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	TotalPoints  int       `json:"total_points"`
	Level        int       `json:"level"`
	Streak       int       `json:"streak"`
	BestStreak   int       `json:"best_streak"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Profile carries the optional identity hints that come with a Telegram
// update, used to create or refresh a ledger row.
type Profile struct {
	TelegramID int64
	Username   string
	FirstName  string
}
