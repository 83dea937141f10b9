package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"movie-catalog/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, password_hash, email_verified_at, needs_password_change, created_at, updated_at`

// SQLUserStore implements UserStore.
type SQLUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSQLUserStore(db *sqlx.DB, logger *slog.Logger) (*SQLUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLUserStore{db: db, logger: logger}, nil
}

// Create inserts the user. Emails are stored lower-cased.
func (s *SQLUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, email_verified_at, needs_password_change, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`
	now := time.Now().UTC()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	err := s.db.GetContext(ctx, &user.ID, s.db.Rebind(query),
		user.Name, user.Email, user.PasswordHash, user.EmailVerifiedAt, user.NeedsPasswordChange, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "User already exists (unique constraint violation in DB)", slog.String("email", user.Email))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created in DB", slog.Int64("userID", user.ID))
	return nil
}

func (s *SQLUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *SQLUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
}

func (s *SQLUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := s.db.GetContext(ctx, &user, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *SQLUserStore) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), normalizeEmail(email), excludeID); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

// Update writes name, email, hash, verification and the password-change flag.
func (s *SQLUserStore) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET name = ?, email = ?, password_hash = ?, email_verified_at = ?,
                  needs_password_change = ?, updated_at = ?
              WHERE id = ?`
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		user.Name, user.Email, user.PasswordHash, user.EmailVerifiedAt, user.NeedsPasswordChange, user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes dependents explicitly so SQLite without foreign_keys behaves like Postgres.
// It returns the movies whose favorite counts changed.
func (s *SQLUserStore) Delete(ctx context.Context, id int64) ([]int64, error) {
	var movieIDs []int64
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &movieIDs, tx.Rebind(`SELECT movie_id FROM favorites WHERE user_id = ?`), id); err != nil {
			return fmt.Errorf("failed to list user favorites: %w", err)
		}
		for _, stmt := range []string{
			`DELETE FROM favorites WHERE user_id = ?`,
			`DELETE FROM access_tokens WHERE user_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
				return fmt.Errorf("failed to delete user dependents: %w", err)
			}
		}
		for _, movieID := range movieIDs {
			if _, err := recomputeFavoriteCount(ctx, tx, movieID); err != nil {
				return err
			}
		}
		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movieIDs, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
