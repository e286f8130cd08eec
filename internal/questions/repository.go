// Package questions is the bank of quiz questions the bot can dispatch.
package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
)

const questionColumns = `id, text, options, correct_index, explanation, archived, send_count, last_sent_at, created_at`

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new question.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (text, options, correct_index, explanation)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query, q.Text, q.Options, q.CorrectIndex, q.Explanation).
		Scan(&q.ID, &q.CreatedAt); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// GetByID returns a question by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var q models.Question
	err := r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.Text, &q.Options, &q.CorrectIndex, &q.Explanation,
			&q.Archived, &q.SendCount, &q.LastSentAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// List returns questions, newest first. Archived questions are included so
// the admin UI can show them; they are only excluded from dispatch.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// PickNext returns the active question that has been sent the fewest times,
// oldest send first, so the rotation is even and stale questions resurface.
func (r *Repository) PickNext(ctx context.Context) (*models.Question, error) {
	var q models.Question
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE NOT archived
		 ORDER BY send_count ASC, last_sent_at ASC NULLS FIRST
		 LIMIT 1`).
		Scan(&q.ID, &q.Text, &q.Options, &q.CorrectIndex, &q.Explanation,
			&q.Archived, &q.SendCount, &q.LastSentAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("pick next question: %w", err)
	}
	return &q, nil
}

// MarkSent bumps the send counter after a successful dispatch.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET send_count = send_count + 1, last_sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark question sent: %w", err)
	}
	return nil
}

// SetArchived toggles a question in or out of the dispatch rotation.
func (r *Repository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		return fmt.Errorf("archive question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanQuestions(rows pgx.Rows) ([]models.Question, error) {
	var list []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectIndex, &q.Explanation,
			&q.Archived, &q.SendCount, &q.LastSentAt, &q.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}
