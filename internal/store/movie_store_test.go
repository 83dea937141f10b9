package store

import (
	"context"
	"testing"

	"movie-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLMovieStore_CRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStores(t)

	t.Run("create assigns id and round-trips ratings", func(t *testing.T) {
		m := createMovie(t, st.movies, &domain.Movie{
			Title:   "Heat",
			Year:    1995,
			ImdbID:  ptr("tt0113277"),
			Ratings: domain.RatingSources{{Source: "Internet Movie Database", Value: "8.3/10"}},
		})
		require.NotZero(t, m.ID)

		got, err := st.movies.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "Heat", got.Title)
		assert.Equal(t, domain.RatingSources{{Source: "Internet Movie Database", Value: "8.3/10"}}, got.Ratings)
		assert.Zero(t, got.FavoriteCount)
	})

	t.Run("duplicate imdb id is a conflict", func(t *testing.T) {
		err := st.movies.Create(ctx, &domain.Movie{Title: "Heat again", Year: 1995, ImdbID: ptr("tt0113277")})
		assert.ErrorIs(t, err, ErrMovieAlreadyExists)
	})

	t.Run("null imdb ids do not collide", func(t *testing.T) {
		createMovie(t, st.movies, &domain.Movie{Title: "Untitled A", Year: 2000})
		createMovie(t, st.movies, &domain.Movie{Title: "Untitled B", Year: 2000})
	})

	t.Run("imdb id taken excludes self", func(t *testing.T) {
		m, err := st.movies.GetByImdbID(ctx, "tt0113277")
		require.NoError(t, err)

		taken, err := st.movies.ImdbIDTaken(ctx, "tt0113277", m.ID)
		require.NoError(t, err)
		assert.False(t, taken)

		taken, err = st.movies.ImdbIDTaken(ctx, "tt0113277", 0)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("update and missing rows", func(t *testing.T) {
		m, err := st.movies.GetByImdbID(ctx, "tt0113277")
		require.NoError(t, err)
		m.Plot = ptr("A heist.")
		require.NoError(t, st.movies.Update(ctx, m))

		got, err := st.movies.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "A heist.", domain.StringValue(got.Plot))

		err = st.movies.Update(ctx, &domain.Movie{ID: 9999, Title: "ghost", Year: 2000})
		assert.ErrorIs(t, err, ErrMovieNotFound)

		_, err = st.movies.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrMovieNotFound)
	})

	t.Run("delete cascades favorites", func(t *testing.T) {
		u := createUser(t, st.users, "cascade@example.com")
		m := createMovie(t, st.movies, &domain.Movie{Title: "Doomed", Year: 2010})
		_, _, err := st.favorites.Add(ctx, u.ID, m.ID)
		require.NoError(t, err)

		require.NoError(t, st.movies.Delete(ctx, m.ID))
		n, err := st.favorites.CountForMovie(ctx, m.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		assert.ErrorIs(t, st.movies.Delete(ctx, m.ID), ErrMovieNotFound)
	})
}

func TestSQLMovieStore_Search(t *testing.T) {
	ctx := context.Background()
	st := newTestStores(t)
	ironMan, matrix, spirited := seedScenario(t, st.movies)

	search := func(q MovieQuery) ([]*domain.Movie, int) {
		t.Helper()
		if q.Limit == 0 {
			q.Limit = 10
		}
		movies, total, err := st.movies.Search(ctx, q)
		require.NoError(t, err)
		return movies, total
	}

	t.Run("title substring", func(t *testing.T) {
		movies, total := search(MovieQuery{Where: Contains(ColTitle, "iron")})
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"Iron Man"}, titles(movies))
	})

	t.Run("year as text", func(t *testing.T) {
		movies, _ := search(MovieQuery{Where: Contains(ColYearText, "199")})
		assert.Equal(t, []string{"The Matrix"}, titles(movies))
	})

	t.Run("rating sort treats null as zero", func(t *testing.T) {
		movies, _ := search(MovieQuery{SortBy: domain.SortRating, Order: domain.SortDesc})
		assert.Equal(t, []string{"Spirited Away", "The Matrix", "Iron Man"}, titles(movies))

		movies, _ = search(MovieQuery{SortBy: domain.SortRating, Order: domain.SortAsc})
		assert.Equal(t, []string{"Iron Man", "The Matrix", "Spirited Away"}, titles(movies))
	})

	t.Run("recency orders by insertion", func(t *testing.T) {
		movies, _ := search(MovieQuery{SortBy: domain.SortRecency, Order: domain.SortDesc})
		assert.Equal(t, []int64{spirited.ID, matrix.ID, ironMan.ID}, []int64{movies[0].ID, movies[1].ID, movies[2].ID})
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		// Iron Man and The Matrix share a genre and a favorite count of 0.
		for i := 0; i < 3; i++ {
			movies, _ := search(MovieQuery{Where: Eq(ColGenre, "Action"), SortBy: domain.SortFavorites, Order: domain.SortDesc})
			assert.Equal(t, []string{"Iron Man", "The Matrix"}, titles(movies))
		}
	})

	t.Run("window and total", func(t *testing.T) {
		movies, total := search(MovieQuery{SortBy: domain.SortTitle, Order: domain.SortAsc, Limit: 2, Offset: 2})
		assert.Equal(t, 3, total)
		assert.Equal(t, []string{"The Matrix"}, titles(movies))

		movies, total = search(MovieQuery{Limit: 2, Offset: 10})
		assert.Equal(t, 3, total)
		assert.Empty(t, movies)
	})
}
