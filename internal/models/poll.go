package models

import (
	"time"

	"github.com/google/uuid"
)

// Poll maps a Telegram poll to the question it was created from. Created once
// when a quiz poll is dispatched to a chat and never mutated afterwards; the
// reconciler reads it to score incoming answers.
type Poll struct {
	ID           uuid.UUID `json:"id"`
	PollID       string    `json:"poll_id"` // Telegram poll identifier
	QuestionID   uuid.UUID `json:"question_id"`
	ChatID       int64     `json:"chat_id"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	SentAt       time.Time `json:"sent_at"`
}

// SendLog records one dispatch attempt of a question to Telegram.
type SendLog struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	ChatID     int64     `json:"chat_id"`
	Success    bool      `json:"success"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}
