// Package users is the durable ledger of per-player score state.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/scoring"
	"github.com/quizrally/backend/internal/storage"
)

const userColumns = `id, telegram_id, username, first_name, total_points, level, streak, best_streak, joined_at, last_active_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindOrCreate returns the ledger row for a Telegram user, creating it on
// first sight. The upsert on the telegram_id unique constraint makes
// concurrent first-answers converge on a single row.
func (r *Repository) FindOrCreate(ctx context.Context, p models.Profile) (*models.User, error) {
	const q = `INSERT INTO users (telegram_id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE users.username END,
			first_name = CASE WHEN EXCLUDED.first_name <> '' THEN EXCLUDED.first_name ELSE users.first_name END,
			last_active_at = NOW()
		RETURNING ` + userColumns
	var u models.User
	err := r.pool.QueryRow(ctx, q, p.TelegramID, p.Username, p.FirstName).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.TotalPoints, &u.Level, &u.Streak, &u.BestStreak,
		&u.JoinedAt, &u.LastActiveAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}
	return &u, nil
}

// FindOrCreateWithBonus is FindOrCreate for entry points that grant a
// welcome bonus: new rows start with bonus points, existing rows are
// untouched. The created flag comes from the xmax system column, which is
// zero only for freshly inserted rows, so the bonus is granted exactly once.
func (r *Repository) FindOrCreateWithBonus(ctx context.Context, p models.Profile, bonus int) (*models.User, bool, error) {
	const q = `INSERT INTO users (telegram_id, username, first_name, total_points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE users.username END,
			first_name = CASE WHEN EXCLUDED.first_name <> '' THEN EXCLUDED.first_name ELSE users.first_name END,
			last_active_at = NOW()
		RETURNING ` + userColumns + `, (xmax = 0) AS created`
	var (
		u       models.User
		created bool
	)
	err := r.pool.QueryRow(ctx, q, p.TelegramID, p.Username, p.FirstName, bonus).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.TotalPoints, &u.Level, &u.Streak, &u.BestStreak,
		&u.JoinedAt, &u.LastActiveAt, &created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("find or create user: %w", err)
	}
	return &u, created, nil
}

// ApplyScore adds delta to the user's points in a single UPDATE so that
// concurrent answers never lose an increment, and adjusts the streak
// counters. Level is recomputed from the returned total and persisted in a
// follow-up write; it is a pure function of points, so a lost level write is
// repaired by the next answer.
func (r *Repository) ApplyScore(ctx context.Context, userID uuid.UUID, delta int, correct bool) (*models.User, error) {
	const q = `UPDATE users SET
			total_points = total_points + $2,
			streak = CASE WHEN $3 THEN streak + 1 ELSE 0 END,
			best_streak = GREATEST(best_streak, CASE WHEN $3 THEN streak + 1 ELSE 0 END),
			last_active_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	var u models.User
	err := r.pool.QueryRow(ctx, q, userID, delta, correct).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.TotalPoints, &u.Level, &u.Streak, &u.BestStreak,
		&u.JoinedAt, &u.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("apply score: %w", err)
	}

	if level := scoring.LevelForPoints(u.TotalPoints); level != u.Level {
		if _, err := r.pool.Exec(ctx, `UPDATE users SET level = $2 WHERE id = $1`, userID, level); err != nil {
			return nil, fmt.Errorf("update level: %w", err)
		}
		u.Level = level
	}
	return &u, nil
}

// GetByTelegramID returns the user keyed by Telegram id.
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.TotalPoints, &u.Level, &u.Streak, &u.BestStreak,
		&u.JoinedAt, &u.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns users ordered by points, for the admin API.
func (r *Repository) List(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY total_points DESC, joined_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
			&u.TotalPoints, &u.Level, &u.Streak, &u.BestStreak,
			&u.JoinedAt, &u.LastActiveAt,
		); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
