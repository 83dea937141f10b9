package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"movie-catalog/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB returns a migrated in-memory SQLite database. A single connection
// keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open(DriverSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

type testStores struct {
	movies    *SQLMovieStore
	favorites *SQLFavoriteStore
	users     *SQLUserStore
	tokens    *SQLTokenStore
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	db := newTestDB(t)
	logger := testLogger()
	movies, err := NewSQLMovieStore(db, logger)
	require.NoError(t, err)
	favorites, err := NewSQLFavoriteStore(db, logger)
	require.NoError(t, err)
	users, err := NewSQLUserStore(db, logger)
	require.NoError(t, err)
	tokens, err := NewSQLTokenStore(db, logger)
	require.NoError(t, err)
	return testStores{movies: movies, favorites: favorites, users: users, tokens: tokens}
}

func ptr[T any](v T) *T { return &v }

func createMovie(t *testing.T, s *SQLMovieStore, m *domain.Movie) *domain.Movie {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), m))
	return m
}

func createUser(t *testing.T, s *SQLUserStore, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Test User", Email: email, PasswordHash: "hash"}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

// seedScenario loads the three-movie catalog used across search tests.
func seedScenario(t *testing.T, s *SQLMovieStore) (ironMan, matrix, spirited *domain.Movie) {
	t.Helper()
	ironMan = createMovie(t, s, &domain.Movie{Title: "Iron Man", Year: 2008, Genre: ptr("Action"), Rated: ptr("PG-13"),
		Actors: ptr("Robert Downey Jr."), ImdbID: ptr("tt0371746")})
	matrix = createMovie(t, s, &domain.Movie{Title: "The Matrix", Year: 1999, Genre: ptr("Action"), Rated: ptr("R"),
		ImdbRating: ptr(8.7), Director: ptr("Lana Wachowski"), ImdbID: ptr("tt0133093")})
	spirited = createMovie(t, s, &domain.Movie{Title: "Spirited Away", Year: 2001, Genre: ptr("Animation"), Rated: ptr("PG"),
		ImdbRating: ptr(9.3), Language: ptr("Japanese"), ImdbID: ptr("tt0245429")})
	return ironMan, matrix, spirited
}

func titles(movies []*domain.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}
