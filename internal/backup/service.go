// Package backup exports table snapshots to S3 as JSON documents.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quizrally/backend/pkg/storage"
)

// backupTables is the whitelist of tables the service will export. The table
// name is interpolated into SQL, so only names from this list are accepted.
var backupTables = []string{"users", "questions", "polls", "answers", "send_logs"}

// Service dumps tables and uploads them.
type Service struct {
	pool   *pgxpool.Pool
	store  *storage.S3
	logger *zap.Logger
}

// NewService creates a backup service.
func NewService(pool *pgxpool.Pool, store *storage.S3, logger *zap.Logger) *Service {
	return &Service{pool: pool, store: store, logger: logger}
}

// Tables returns the exportable table names.
func Tables() []string {
	return append([]string(nil), backupTables...)
}

// Allowed reports whether a table may be exported.
func Allowed(table string) bool {
	for _, t := range backupTables {
		if t == table {
			return true
		}
	}
	return false
}

// BackupTable exports one table as a JSON array and uploads it. Returns the
// object URL.
func (s *Service) BackupTable(ctx context.Context, table string) (string, error) {
	if !Allowed(table) {
		return "", fmt.Errorf("table %q is not exportable", table)
	}

	// json_agg builds the whole document server-side; tables here are small
	// enough that a single row result is fine.
	var doc []byte
	query := fmt.Sprintf(`SELECT COALESCE(json_agg(t), '[]'::json) FROM %s t`, table)
	if err := s.pool.QueryRow(ctx, query).Scan(&doc); err != nil {
		return "", fmt.Errorf("dump %s: %w", table, err)
	}

	key := storage.BackupKey(table, time.Now().UTC())
	url, err := s.store.Upload(ctx, s.store.BackupsBucket(), key, "application/json", bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("upload %s backup: %w", table, err)
	}
	s.logger.Info("table backed up",
		zap.String("table", table),
		zap.String("key", key),
		zap.Int("bytes", len(doc)))
	return url, nil
}

// BackupAll exports every whitelisted table, continuing past individual
// failures and returning the first error encountered.
func (s *Service) BackupAll(ctx context.Context) error {
	var firstErr error
	for _, table := range backupTables {
		if _, err := s.BackupTable(ctx, table); err != nil {
			s.logger.Error("backup failed", zap.String("table", table), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
