// Package leaderboard ranks players over all-time, weekly and monthly windows.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Period selects the scoring window.
type Period string

const (
	PeriodAllTime Period = "all"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod maps a query value to a Period, defaulting to all-time.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", "all", "alltime":
		return PeriodAllTime, nil
	case "weekly", "week":
		return PeriodWeekly, nil
	case "monthly", "month":
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

func (p Period) since(now time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// Entry is one leaderboard row.
type Entry struct {
	Rank       int    `json:"rank"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	Points     int    `json:"points"`
	Level      int    `json:"level"`
}

// Repository computes leaderboards from the users and answers tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a leaderboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Top returns the highest scoring players for a period. The all-time board
// reads the users ledger directly; windowed boards sum the answer records
// inside the window, so a player's weekly score is exactly what they earned
// that week.
func (r *Repository) Top(ctx context.Context, period Period, limit int) ([]Entry, error) {
	var (
		query string
		args  []interface{}
	)
	if period == PeriodAllTime {
		query = `SELECT telegram_id, username, first_name, total_points, level
			FROM users
			ORDER BY total_points DESC, joined_at ASC
			LIMIT $1`
		args = []interface{}{limit}
	} else {
		query = `SELECT u.telegram_id, u.username, u.first_name, SUM(a.points_awarded)::int AS points, u.level
			FROM answers a
			JOIN users u ON u.id = a.user_id
			WHERE a.answered_at >= $1
			GROUP BY u.id
			ORDER BY points DESC, u.joined_at ASC
			LIMIT $2`
		args = []interface{}{period.since(time.Now()), limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TelegramID, &e.Username, &e.FirstName, &e.Points, &e.Level); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Rank returns a player's all-time rank: one more than the number of players
// with strictly more points, so ties share a rank.
func (r *Repository) Rank(ctx context.Context, telegramID int64) (int, error) {
	var rank int
	err := r.pool.QueryRow(ctx,
		`SELECT 1 + COUNT(*) FROM users
		 WHERE total_points > (SELECT total_points FROM users WHERE telegram_id = $1)`,
		telegramID).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("rank query: %w", err)
	}
	return rank, nil
}
