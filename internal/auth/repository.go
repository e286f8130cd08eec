package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
	"github.com/quizrally/backend/pkg/utils"
)

// Repository handles admin account persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns an admin account by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	const q = `SELECT id, email, password_hash, created_at FROM admin_accounts WHERE email = $1`
	var a models.AdminAccount
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin account.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (*models.AdminAccount, error) {
	const q = `INSERT INTO admin_accounts (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at`
	var a models.AdminAccount
	err := r.pool.QueryRow(ctx, q, email, passwordHash).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, err
	}
	return &a, nil
}

// EnsureAdmin creates the bootstrap admin from configuration when no account
// with that email exists. There is no open registration; new admins are
// added by existing ones or by deploy configuration.
func (r *Repository) EnsureAdmin(ctx context.Context, email, password string, logger *zap.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := r.Create(ctx, email, hash); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
