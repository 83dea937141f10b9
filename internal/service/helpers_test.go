package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/auth"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

// mapCache is an in-process MovieCache that records invalidations.
type mapCache struct {
	mu          sync.Mutex
	movies      map[int64]domain.Movie
	invalidated []int64
}

func newMapCache() *mapCache { return &mapCache{movies: make(map[int64]domain.Movie)} }

func (c *mapCache) Get(_ context.Context, id int64) (*domain.Movie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.movies[id]
	if !ok {
		return nil, false
	}
	return &m, true
}

func (c *mapCache) Set(_ context.Context, m *domain.Movie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movies[m.ID] = *m
}

func (c *mapCache) Invalidate(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.movies, id)
	c.invalidated = append(c.invalidated, id)
}

type testEnv struct {
	db        *sqlx.DB
	movies    *store.SQLMovieStore
	favStore  *store.SQLFavoriteStore
	users     *store.SQLUserStore
	tokens    *store.SQLTokenStore
	cache     *mapCache
	mailer    *recordingMailer
	tm        auth.TokenManager
	movieSvc  *MovieService
	favSvc    *FavoriteService
	searchSvc *SearchService
	authSvc   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlx.Open(store.DriverSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = store.Migrate(context.Background(), db)
	require.NoError(t, err)

	logger := testLogger()
	env := &testEnv{db: db, cache: newMapCache(), mailer: &recordingMailer{}}
	env.movies, err = store.NewSQLMovieStore(db, logger)
	require.NoError(t, err)
	env.favStore, err = store.NewSQLFavoriteStore(db, logger)
	require.NoError(t, err)
	env.users, err = store.NewSQLUserStore(db, logger)
	require.NoError(t, err)
	env.tokens, err = store.NewSQLTokenStore(db, logger)
	require.NoError(t, err)
	env.tm, err = auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	v := NewValidator()
	env.movieSvc = NewMovieService(env.movies, env.favStore, env.cache, v, logger)
	env.favSvc = NewFavoriteService(env.favStore, env.cache, DefaultPageConfig, logger)
	env.searchSvc = NewSearchService(env.movies, env.favStore, DefaultPageConfig, logger)
	env.authSvc = NewAuthService(env.users, env.tokens, env.cache, env.tm, env.mailer, v, "http://catalog.test", logger)
	return env
}

func (e *testEnv) createMovie(t *testing.T, req domain.CreateMovieRequest) *domain.Movie {
	t.Helper()
	m, err := e.movieSvc.Create(context.Background(), req)
	require.NoError(t, err)
	return m
}

func (e *testEnv) register(t *testing.T, email string) *domain.AuthResponse {
	t.Helper()
	resp, err := e.authSvc.Register(context.Background(), domain.RegisterRequest{
		Name: "Test User", Email: email, Password: "password123", PasswordConfirmation: "password123",
	})
	require.NoError(t, err)
	return resp
}

// seedCatalog loads Iron Man, The Matrix and Spirited Away, in that order.
func (e *testEnv) seedCatalog(t *testing.T) (ironMan, matrix, spirited *domain.Movie) {
	t.Helper()
	ironMan = e.createMovie(t, domain.CreateMovieRequest{Title: "Iron Man", Year: 2008, Genre: ptr("Action"),
		Rated: ptr("PG-13"), Actors: ptr("Robert Downey Jr."), ImdbID: ptr("tt0371746")})
	matrix = e.createMovie(t, domain.CreateMovieRequest{Title: "The Matrix", Year: 1999, Genre: ptr("Action"),
		Rated: ptr("R"), ImdbRating: ptr(8.7), ImdbID: ptr("tt0133093")})
	spirited = e.createMovie(t, domain.CreateMovieRequest{Title: "Spirited Away", Year: 2001, Genre: ptr("Animation"),
		Rated: ptr("PG"), ImdbRating: ptr(9.3), ImdbID: ptr("tt0245429")})
	return ironMan, matrix, spirited
}

func titles(movies []*domain.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}
