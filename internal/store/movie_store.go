// internal/store/movie_store.go
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

var movieColumns = []string{
	"id", "imdb_id", "title", "year", "rated", "released", "runtime", "genre", "director",
	"writer", "actors", "plot", "language", "country", "awards", "poster", "imdb_rating",
	"imdb_votes", "metascore", "ratings", "favorited_by_count", "created_at", "updated_at",
}

// selectMovieColumns renders the movie column list, optionally qualified by a table alias.
func selectMovieColumns(alias string) string {
	if alias == "" {
		return strings.Join(movieColumns, ", ")
	}
	qualified := make([]string, len(movieColumns))
	for i, c := range movieColumns {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

// orderByClauses maps each sort key to its ORDER BY template. %s is the direction.
// Ties fall back to id ascending, which is insertion order.
var orderByClauses = map[domain.SortKey]string{
	domain.SortTitle:     "LOWER(title) %s, id ASC",
	domain.SortYear:      "year %s, id ASC",
	domain.SortRating:    "COALESCE(imdb_rating, 0) %s, id ASC",
	domain.SortFavorites: "favorited_by_count %s, id ASC",
	domain.SortRecency:   "id %s",
}

func orderBy(key domain.SortKey, order domain.SortOrder) string {
	tmpl, ok := orderByClauses[key]
	if !ok {
		tmpl = orderByClauses[domain.SortRecency]
	}
	dir := "DESC"
	if order == domain.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(tmpl, dir)
}

// SQLMovieStore implements MovieStore on top of sqlx for Postgres and SQLite.
type SQLMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLMovieStore creates a new SQLMovieStore.
func NewSQLMovieStore(db *sqlx.DB, logger *slog.Logger) (*SQLMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLMovieStore{db: db, logger: logger}, nil
}

// Create inserts the movie and fills in its id and timestamps.
func (s *SQLMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	query := `INSERT INTO movies (imdb_id, title, year, rated, released, runtime, genre, director, writer,
                  actors, plot, language, country, awards, poster, imdb_rating, imdb_votes, metascore,
                  ratings, favorited_by_count, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
              RETURNING id`

	now := time.Now().UTC()
	movie.CreatedAt = now
	movie.UpdatedAt = now
	movie.FavoriteCount = 0

	s.logger.DebugContext(ctx, "Executing Create movie query", slog.String("title", movie.Title))
	err := s.db.GetContext(ctx, &movie.ID, s.db.Rebind(query),
		movie.ImdbID, movie.Title, movie.Year, movie.Rated, movie.Released, movie.Runtime,
		movie.Genre, movie.Director, movie.Writer, movie.Actors, movie.Plot, movie.Language,
		movie.Country, movie.Awards, movie.Poster, movie.ImdbRating, movie.ImdbVotes,
		movie.Metascore, movie.Ratings, movie.CreatedAt, movie.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "Movie already exists (unique constraint violation in DB)", slog.String("imdb_id", domain.StringValue(movie.ImdbID)))
			return ErrMovieAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create movie in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create movie: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie created in DB", slog.Int64("movieID", movie.ID))
	return nil
}

// GetByID finds a movie by id.
func (s *SQLMovieStore) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	query := `SELECT ` + selectMovieColumns("") + ` FROM movies WHERE id = ?`
	var movie domain.Movie

	s.logger.DebugContext(ctx, "Executing GetMovieByID query", slog.Int64("movieID", id))
	if err := s.db.GetContext(ctx, &movie, s.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Movie not found by ID in DB", slog.Int64("movieID", id))
			return nil, ErrMovieNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}
	return &movie, nil
}

// GetByImdbID finds a movie by its external identifier.
func (s *SQLMovieStore) GetByImdbID(ctx context.Context, imdbID string) (*domain.Movie, error) {
	query := `SELECT ` + selectMovieColumns("") + ` FROM movies WHERE imdb_id = ?`
	var movie domain.Movie
	if err := s.db.GetContext(ctx, &movie, s.db.Rebind(query), imdbID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie by imdb id: %w", err)
	}
	return &movie, nil
}

// ImdbIDTaken reports whether another movie than excludeID holds imdbID.
func (s *SQLMovieStore) ImdbIDTaken(ctx context.Context, imdbID string, excludeID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM movies WHERE imdb_id = ? AND id <> ?`
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), imdbID, excludeID); err != nil {
		return false, fmt.Errorf("failed to check imdb id: %w", err)
	}
	return n > 0, nil
}

// Update writes every editable column. The favorite count is owned by the
// favorites store and is not touched here.
func (s *SQLMovieStore) Update(ctx context.Context, movie *domain.Movie) error {
	query := `UPDATE movies SET imdb_id = ?, title = ?, year = ?, rated = ?, released = ?, runtime = ?,
                  genre = ?, director = ?, writer = ?, actors = ?, plot = ?, language = ?, country = ?,
                  awards = ?, poster = ?, imdb_rating = ?, imdb_votes = ?, metascore = ?, ratings = ?,
                  updated_at = ?
              WHERE id = ?`
	movie.UpdatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing Update movie query", slog.Int64("movieID", movie.ID))
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		movie.ImdbID, movie.Title, movie.Year, movie.Rated, movie.Released, movie.Runtime,
		movie.Genre, movie.Director, movie.Writer, movie.Actors, movie.Plot, movie.Language,
		movie.Country, movie.Awards, movie.Poster, movie.ImdbRating, movie.ImdbVotes,
		movie.Metascore, movie.Ratings, movie.UpdatedAt, movie.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMovieAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to update movie in DB", slog.Int64("movieID", movie.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update movie: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		s.logger.WarnContext(ctx, "No movie found to update in DB", slog.Int64("movieID", movie.ID))
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes the movie together with its favorites rows.
func (s *SQLMovieStore) Delete(ctx context.Context, id int64) error {
	s.logger.DebugContext(ctx, "Executing Delete movie", slog.Int64("movieID", id))
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM favorites WHERE movie_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete favorites of movie: %w", err)
		}
		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM movies WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete movie: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrMovieNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrMovieNotFound) {
		s.logger.ErrorContext(ctx, "Failed to delete movie in DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
	}
	return err
}

// Search returns one window of the movies matching q plus the total match count.
func (s *SQLMovieStore) Search(ctx context.Context, q MovieQuery) ([]*domain.Movie, int, error) {
	where, args := BuildWhere(q.Where)

	var total int
	countQuery := `SELECT COUNT(*) FROM movies WHERE ` + where
	s.logger.DebugContext(ctx, "Executing Search movies count query", slog.String("query", countQuery), slog.Any("args", args))
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(countQuery), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count movies in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if total == 0 || q.Offset >= total {
		return []*domain.Movie{}, total, nil
	}

	selectQuery := `SELECT ` + selectMovieColumns("") + ` FROM movies WHERE ` + where +
		` ORDER BY ` + orderBy(q.SortBy, q.Order) + ` LIMIT ? OFFSET ?`
	selectArgs := append(append([]any{}, args...), q.Limit, q.Offset)

	movies := []*domain.Movie{}
	if err := s.db.SelectContext(ctx, &movies, s.db.Rebind(selectQuery), selectArgs...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to search movies in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search movies: %w", err)
	}
	return movies, total, nil
}
