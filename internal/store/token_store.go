package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"movie-catalog/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLTokenStore keeps one row per issued bearer token.
type SQLTokenStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSQLTokenStore(db *sqlx.DB, logger *slog.Logger) (*SQLTokenStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLTokenStore{db: db, logger: logger}, nil
}

func (s *SQLTokenStore) Create(ctx context.Context, token *domain.AccessToken) error {
	query := `INSERT INTO access_tokens (id, user_id, created_at, last_used_at, expires_at) VALUES (?, ?, ?, ?, ?)`
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		token.ID, token.UserID, token.CreatedAt, token.LastUsedAt, token.ExpiresAt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store access token", slog.Int64("userID", token.UserID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create access token: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) Get(ctx context.Context, id string) (*domain.AccessToken, error) {
	var token domain.AccessToken
	query := `SELECT id, user_id, created_at, last_used_at, expires_at FROM access_tokens WHERE id = ?`
	if err := s.db.GetContext(ctx, &token, s.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return &token, nil
}

func (s *SQLTokenStore) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE access_tokens SET last_used_at = ? WHERE id = ?`), at.UTC(), id); err != nil {
		return fmt.Errorf("failed to touch access token: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM access_tokens WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (s *SQLTokenStore) DeleteForUser(ctx context.Context, userID int64, keep ...string) (int64, error) {
	query, args := `DELETE FROM access_tokens WHERE user_id = ?`, []any{userID}
	if len(keep) > 0 {
		var err error
		query, args, err = sqlx.In(`DELETE FROM access_tokens WHERE user_id = ? AND id NOT IN (?)`, userID, keep)
		if err != nil {
			return 0, fmt.Errorf("failed to build token revocation: %w", err)
		}
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke access tokens: %w", err)
	}
	rows, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Access tokens revoked", slog.Int64("userID", userID), slog.Int64("count", rows))
	return rows, nil
}
