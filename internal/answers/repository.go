// Package answers is the append-only record of reconciled poll answers.
package answers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizrally/backend/internal/models"
)

// Repository handles answer persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an answers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts an answer and reports whether the row was new. The unique
// constraint on (poll_id, user_id) turns a redelivered or duplicate event
// into a no-op insert, which is the idempotency gate for scoring.
func (r *Repository) Record(ctx context.Context, a *models.Answer) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO answers (user_id, poll_id, selected_index, is_correct, points_awarded)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT ON CONSTRAINT answers_one_per_poll DO NOTHING`,
		a.UserID, a.PollID, a.SelectedIndex, a.IsCorrect, a.PointsAwarded)
	if err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Stats summarizes one user's answer history.
type Stats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// StatsByUser returns the answer counts used by the /stats command.
func (r *Repository) StatsByUser(ctx context.Context, userID uuid.UUID) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct) FROM answers WHERE user_id = $1`,
		userID).Scan(&s.Total, &s.Correct)
	if err != nil {
		return Stats{}, fmt.Errorf("answer stats: %w", err)
	}
	return s, nil
}
