package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"movie-catalog/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLFavoriteStore implements FavoriteStore.
//
// The cached movies.favorited_by_count column is never incremented in place:
// every mutation recomputes it from the favorites rows inside the mutating
// transaction, so retries cannot make it drift.
type SQLFavoriteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSQLFavoriteStore(db *sqlx.DB, logger *slog.Logger) (*SQLFavoriteStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLFavoriteStore{db: db, logger: logger}, nil
}

// Add favorites a catalog movie. It fails with ErrMovieNotFound for unknown
// movies and ErrAlreadyFavorited when the pair exists.
func (s *SQLFavoriteStore) Add(ctx context.Context, userID, movieID int64) (*domain.Favorite, int64, error) {
	var (
		fav   *domain.Favorite
		count int64
	)
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := movieExists(ctx, tx, movieID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrMovieNotFound
		}
		favorited, err := favoriteExists(ctx, tx, userID, movieID)
		if err != nil {
			return err
		}
		if favorited {
			return ErrAlreadyFavorited
		}
		if fav, err = insertFavorite(ctx, tx, userID, movieID); err != nil {
			return err
		}
		count, err = recomputeFavoriteCount(ctx, tx, movieID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "add", userID, movieID, err)
		return nil, 0, err
	}
	s.logger.InfoContext(ctx, "Favorite added", slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.Int64("count", count))
	return fav, count, nil
}

// Remove deletes the pair if present.
func (s *SQLFavoriteStore) Remove(ctx context.Context, userID, movieID int64) (bool, int64, error) {
	var (
		removed bool
		count   int64
	)
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		if removed, err = deleteFavorite(ctx, tx, userID, movieID); err != nil {
			return err
		}
		if !removed {
			count, err = countFavorites(ctx, tx, movieID)
			return err
		}
		count, err = recomputeFavoriteCount(ctx, tx, movieID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "remove", userID, movieID, err)
		return false, 0, err
	}
	if !removed {
		s.logger.DebugContext(ctx, "Favorite to remove not found", slog.Int64("userID", userID), slog.Int64("movieID", movieID))
	}
	return removed, count, nil
}

// Toggle flips membership of the pair. The movie does not have to exist in
// the catalog; the reported count always comes from the favorites rows.
func (s *SQLFavoriteStore) Toggle(ctx context.Context, userID, movieID int64) (*domain.ToggleResult, error) {
	result := &domain.ToggleResult{}
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		removed, err := deleteFavorite(ctx, tx, userID, movieID)
		if err != nil {
			return err
		}
		if !removed {
			fav, err := insertFavorite(ctx, tx, userID, movieID)
			if err != nil {
				return err
			}
			result.Added = true
			result.Favorite = fav
		}
		result.Count, err = recomputeFavoriteCount(ctx, tx, movieID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "toggle", userID, movieID, err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Favorite toggled", slog.Int64("userID", userID), slog.Int64("movieID", movieID),
		slog.Bool("added", result.Added), slog.Int64("count", result.Count))
	return result, nil
}

func (s *SQLFavoriteStore) Exists(ctx context.Context, userID, movieID int64) (bool, error) {
	return favoriteExists(ctx, s.db, userID, movieID)
}

// CountForMovie counts favorites rows directly, independent of the cached column.
func (s *SQLFavoriteStore) CountForMovie(ctx context.Context, movieID int64) (int64, error) {
	return countFavorites(ctx, s.db, movieID)
}

// FavoritedIDs reports which of movieIDs the user has favorited.
func (s *SQLFavoriteStore) FavoritedIDs(ctx context.Context, userID int64, movieIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT movie_id FROM favorites WHERE user_id = ? AND movie_id IN (?)`, userID, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build favorites lookup: %w", err)
	}
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to look up favorites: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListForUser returns the user's favorited catalog movies, most recently favorited first.
func (s *SQLFavoriteStore) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Movie, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM favorites f JOIN movies m ON m.id = f.movie_id WHERE f.user_id = ?`
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(countQuery), userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count user favorites: %w", err)
	}
	movies := []*domain.Movie{}
	if total == 0 || offset >= total {
		return movies, total, nil
	}
	query := `SELECT ` + selectMovieColumns("m") + `
              FROM favorites f JOIN movies m ON m.id = f.movie_id
              WHERE f.user_id = ?
              ORDER BY f.created_at DESC, f.id DESC
              LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &movies, s.db.Rebind(query), userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list user favorites: %w", err)
	}
	for _, m := range movies {
		m.IsFavorited = true
	}
	return movies, total, nil
}

// CountForUser counts all favorites rows of the user, including external ids.
func (s *SQLFavoriteStore) CountForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM favorites WHERE user_id = ?`), userID); err != nil {
		return 0, fmt.Errorf("failed to count user favorites: %w", err)
	}
	return n, nil
}

// GenreBreakdown groups the user's favorites by genre, largest first, ties by name.
func (s *SQLFavoriteStore) GenreBreakdown(ctx context.Context, userID int64, limit int) ([]domain.GenreCount, error) {
	query := `SELECT m.genre AS genre, COUNT(*) AS count
              FROM favorites f JOIN movies m ON m.id = f.movie_id
              WHERE f.user_id = ? AND m.genre IS NOT NULL AND m.genre <> ''
              GROUP BY m.genre
              ORDER BY count DESC, m.genre ASC
              LIMIT ?`
	out := []domain.GenreCount{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), userID, limit); err != nil {
		return nil, fmt.Errorf("failed to group favorites by genre: %w", err)
	}
	return out, nil
}

func (s *SQLFavoriteStore) RecentForUser(ctx context.Context, userID int64, limit int) ([]domain.MovieSummary, error) {
	query := `SELECT m.id, m.title, m.year, m.poster, m.genre, m.imdb_rating
              FROM favorites f JOIN movies m ON m.id = f.movie_id
              WHERE f.user_id = ?
              ORDER BY f.created_at DESC, f.id DESC
              LIMIT ?`
	out := []domain.MovieSummary{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent favorites: %w", err)
	}
	return out, nil
}

func (s *SQLFavoriteStore) logFailure(ctx context.Context, op string, userID, movieID int64, err error) {
	attrs := []any{slog.String("op", op), slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.String("error", err.Error())}
	if errors.Is(err, ErrAlreadyFavorited) || errors.Is(err, ErrMovieNotFound) {
		s.logger.WarnContext(ctx, "Favorite mutation rejected", attrs...)
		return
	}
	s.logger.ErrorContext(ctx, "Favorite mutation failed", attrs...)
}

func movieExists(ctx context.Context, q sqlx.QueryerContext, movieID int64) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, rebind(q, `SELECT COUNT(*) FROM movies WHERE id = ?`), movieID); err != nil {
		return false, fmt.Errorf("failed to check movie: %w", err)
	}
	return n > 0, nil
}

func favoriteExists(ctx context.Context, q sqlx.QueryerContext, userID, movieID int64) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, rebind(q, `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND movie_id = ?`), userID, movieID); err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return n > 0, nil
}

func countFavorites(ctx context.Context, q sqlx.QueryerContext, movieID int64) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, rebind(q, `SELECT COUNT(*) FROM favorites WHERE movie_id = ?`), movieID); err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return n, nil
}

// insertFavorite maps a unique violation to ErrAlreadyFavorited, which is how
// a concurrent duplicate add surfaces.
func insertFavorite(ctx context.Context, tx *sqlx.Tx, userID, movieID int64) (*domain.Favorite, error) {
	fav := &domain.Favorite{UserID: userID, MovieID: movieID, CreatedAt: time.Now().UTC()}
	query := tx.Rebind(`INSERT INTO favorites (user_id, movie_id, created_at) VALUES (?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &fav.ID, query, userID, movieID, fav.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyFavorited
		}
		return nil, fmt.Errorf("failed to insert favorite: %w", err)
	}
	return fav, nil
}

func deleteFavorite(ctx context.Context, tx *sqlx.Tx, userID, movieID int64) (bool, error) {
	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`), userID, movieID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows > 0, nil
}

// recomputeFavoriteCount derives the count from the favorites rows and stores
// it on the movie row when one exists.
func recomputeFavoriteCount(ctx context.Context, tx *sqlx.Tx, movieID int64) (int64, error) {
	count, err := countFavorites(ctx, tx, movieID)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE movies SET favorited_by_count = ? WHERE id = ?`), count, movieID); err != nil {
		return 0, fmt.Errorf("failed to update favorite count: %w", err)
	}
	return count, nil
}

// rebind converts '?' placeholders for whichever sqlx handle runs the query.
func rebind(q sqlx.QueryerContext, query string) string {
	if ext, ok := q.(sqlx.ExtContext); ok {
		return ext.Rebind(query)
	}
	return query
}
