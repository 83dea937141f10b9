package service

import (
	"context"
	"testing"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_TwoUsersScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	m := env.createMovie(t, domain.CreateMovieRequest{Title: "Heat", Year: 1995, Genre: ptr("Crime, Drama")})
	u := env.register(t, "u@example.com").User
	v := env.register(t, "v@example.com").User

	count, err := env.favSvc.CountFor(ctx, m.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, count, err = env.favSvc.Add(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, count, err = env.favSvc.Add(ctx, v.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	removed, count, err := env.favSvc.Remove(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, int64(1), count)

	stats, err := env.favSvc.StatsFor(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalFavorites)
	require.Len(t, stats.RecentFavorites, 1)
	assert.Equal(t, m.ID, stats.RecentFavorites[0].ID)
	assert.Equal(t, []domain.GenreCount{{Genre: "Crime, Drama", Count: 1}}, stats.FavoritesByGenre)

	stats, err = env.favSvc.StatsFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFavorites)
	assert.Empty(t, stats.RecentFavorites)

	got, err := env.movieSvc.Get(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.FavoriteCount)
}

func TestFavoriteService_AddTwice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	m := env.createMovie(t, domain.CreateMovieRequest{Title: "Alien", Year: 1979})
	u := env.register(t, "twice@example.com").User

	_, _, err := env.favSvc.Add(ctx, u.ID, m.ID)
	require.NoError(t, err)
	_, _, err = env.favSvc.Add(ctx, u.ID, m.ID)
	assert.ErrorIs(t, err, store.ErrAlreadyFavorited)

	count, err := env.favSvc.CountFor(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFavoriteService_RemoveAbsent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	m := env.createMovie(t, domain.CreateMovieRequest{Title: "Alien", Year: 1979})
	u := env.register(t, "absent@example.com").User
	v := env.register(t, "other@example.com").User
	_, _, err := env.favSvc.Add(ctx, v.ID, m.ID)
	require.NoError(t, err)

	removed, count, err := env.favSvc.Remove(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, int64(1), count)

	favorited, err := env.favSvc.IsFavorited(ctx, v.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, favorited)
}

func TestFavoriteService_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	m := env.createMovie(t, domain.CreateMovieRequest{Title: "Up", Year: 2009})
	u := env.register(t, "toggle@example.com").User
	other := env.register(t, "fan@example.com").User
	_, before, err := env.favSvc.Add(ctx, other.ID, m.ID)
	require.NoError(t, err)

	first, err := env.favSvc.Toggle(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, first.Added)
	assert.Equal(t, before+1, first.Count)

	second, err := env.favSvc.Toggle(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, second.Added)
	assert.Equal(t, before, second.Count)

	favorited, err := env.favSvc.IsFavorited(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, favorited)
	assert.Contains(t, env.cache.invalidated, m.ID)
}

func TestFavoriteService_ToggleExternalMovie(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "external@example.com").User

	res, err := env.favSvc.Toggle(ctx, u.ID, 987654)
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Equal(t, int64(1), res.Count)

	stats, err := env.favSvc.StatsFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalFavorites)
	assert.Empty(t, stats.RecentFavorites, "external ids have no catalog row to summarize")

	res, err = env.favSvc.Toggle(ctx, u.ID, 987654)
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Zero(t, res.Count)
}

func TestFavoriteService_RejectsBadMovieID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "bad@example.com").User

	_, err := env.favSvc.Toggle(ctx, u.ID, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "movie_id")

	_, _, err = env.favSvc.Add(ctx, u.ID, 77)
	assert.ErrorIs(t, err, store.ErrMovieNotFound)
}

func TestFavoriteService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ironMan, matrix, spirited := env.seedCatalog(t)
	u := env.register(t, "list@example.com").User
	for _, m := range []*domain.Movie{ironMan, matrix, spirited} {
		_, _, err := env.favSvc.Add(ctx, u.ID, m.ID)
		require.NoError(t, err)
	}

	page, err := env.favSvc.List(ctx, u.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.LastPage)
	assert.Len(t, page.Data, 2)
	for _, m := range page.Data {
		assert.True(t, m.IsFavorited)
	}

	page, err = env.favSvc.List(ctx, u.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, page.Pagination.HasMorePages)
}
