package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminAccount is an operator account for the admin API.
type AdminAccount struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
