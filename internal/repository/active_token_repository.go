package repository

import (
	"context"

	"github.com/spec-kit/task-service/internal/domain"
)

// ActiveTokenRepository keeps the allow-list of issued session tokens in
// the active_tokens table.
type ActiveTokenRepository struct {
	db DBTX
}

// NewActiveTokenRepository constructs repository.
func NewActiveTokenRepository(db DBTX) *ActiveTokenRepository {
	return &ActiveTokenRepository{db: db}
}

// Add records token as active. Re-adding the same token refreshes created_at.
func (r *ActiveTokenRepository) Add(ctx context.Context, token string) error {
	const query = `
        INSERT INTO active_tokens (token)
        VALUES ($1)
        ON CONFLICT (token) DO UPDATE SET created_at=NOW()`
	_, err := r.db.Exec(ctx, query, token)
	return err
}

// Exists reports whether token is on the allow-list.
func (r *ActiveTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM active_tokens WHERE token=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Find returns the stored record, or pgx.ErrNoRows when token is not active.
func (r *ActiveTokenRepository) Find(ctx context.Context, token string) (*domain.ActiveToken, error) {
	const query = `SELECT token, created_at FROM active_tokens WHERE token=$1`
	var record domain.ActiveToken
	if err := r.db.QueryRow(ctx, query, token).Scan(&record.Token, &record.CreatedAt); err != nil {
		return nil, err
	}
	return &record, nil
}

// Remove deletes token and reports whether it was present.
func (r *ActiveTokenRepository) Remove(ctx context.Context, token string) (bool, error) {
	const query = `DELETE FROM active_tokens WHERE token=$1`
	cmd, err := r.db.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
