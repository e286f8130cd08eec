// Package polls maps dispatched Telegram polls back to the questions they
// carry, and dispatches new ones.
package polls

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
)

// Repository handles poll persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a polls repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Register stores the mapping from a Telegram poll id to the question it was
// sent as. The poll row carries a snapshot of the options and correct index,
// so later edits to the question cannot rewrite history for in-flight polls.
func (r *Repository) Register(ctx context.Context, p *models.Poll) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO polls (poll_id, question_id, chat_id, options, correct_index)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, sent_at`,
		p.PollID, p.QuestionID, p.ChatID, p.Options, p.CorrectIndex,
	).Scan(&p.ID, &p.SentAt)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("register poll: %w", err)
	}
	return nil
}

// GetByPollID resolves a Telegram poll id to the registered poll.
func (r *Repository) GetByPollID(ctx context.Context, pollID string) (*models.Poll, error) {
	var p models.Poll
	err := r.pool.QueryRow(ctx,
		`SELECT id, poll_id, question_id, chat_id, options, correct_index, sent_at
		 FROM polls WHERE poll_id = $1`, pollID,
	).Scan(&p.ID, &p.PollID, &p.QuestionID, &p.ChatID, &p.Options, &p.CorrectIndex, &p.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get poll: %w", err)
	}
	return &p, nil
}

// ListRecent returns the most recently dispatched polls.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.Poll, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, poll_id, question_id, chat_id, options, correct_index, sent_at
		 FROM polls ORDER BY sent_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Poll
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.PollID, &p.QuestionID, &p.ChatID, &p.Options, &p.CorrectIndex, &p.SentAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// LogSend records a dispatch attempt, successful or not.
func (r *Repository) LogSend(ctx context.Context, log *models.SendLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO send_logs (question_id, chat_id, success, error_msg) VALUES ($1, $2, $3, $4)`,
		log.QuestionID, log.ChatID, log.Success, log.ErrorMsg)
	if err != nil {
		return fmt.Errorf("log send: %w", err)
	}
	return nil
}
