package omdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrixDetail = `{
	"Title": "The Matrix", "Year": "1999", "Rated": "R", "Released": "31 Mar 1999",
	"Runtime": "136 min", "Genre": "Action, Sci-Fi", "Director": "Lana Wachowski, Lilly Wachowski",
	"Writer": "N/A", "Actors": "Keanu Reeves", "Plot": "A hacker learns the truth.",
	"Language": "English", "Country": "United States", "Awards": "Won 4 Oscars",
	"Poster": "https://m.media-amazon.com/images/M/matrix.jpg",
	"Ratings": [{"Source": "Internet Movie Database", "Value": "8.7/10"}, {"Source": "Metacritic", "Value": ""}],
	"Metascore": "73", "imdbRating": "8.7", "imdbVotes": "2,079,123", "imdbID": "tt0133093",
	"Type": "movie", "Response": "True"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL + "/", RequestsPerSecond: 1000},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apikey"))
		assert.Equal(t, "movie", q.Get("type"))
		assert.Equal(t, "2", q.Get("page"))
		switch q.Get("s") {
		case "matrix":
			io.WriteString(w, `{"Search":[{"Title":"The Matrix","Year":"1999","imdbID":"tt0133093","Type":"movie"},
				{"Title":"Nameless","Year":"2001","imdbID":"","Type":"movie"}],"totalResults":"42","Response":"True"}`)
		default:
			io.WriteString(w, `{"Response":"False","Error":"Movie not found!"}`)
		}
	})

	results, total, err := c.Search(context.Background(), "matrix", 2)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.Len(t, results, 2)

	ids, err := c.SearchIDs(context.Background(), "matrix", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"tt0133093"}, ids)

	_, _, err = c.Search(context.Background(), "zzzz", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByIDAndLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "full", q.Get("plot"))
		if q.Get("i") == "tt0133093" {
			io.WriteString(w, matrixDetail)
			return
		}
		io.WriteString(w, `{"Response":"False","Error":"Incorrect IMDb ID."}`)
	})

	movie, err := c.GetByID(context.Background(), "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", movie.Title)

	req, err := c.Lookup(context.Background(), "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, 1999, req.Year)
	assert.Nil(t, req.Writer)
	require.NotNil(t, req.ImdbVotes)
	assert.EqualValues(t, 2079123, *req.ImdbVotes)
	assert.Len(t, req.Ratings, 1)

	_, err = c.Lookup(context.Background(), "tt-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, want: "invalid api key"},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, want: "unexpected status code: 502"},
		{name: "bad json", status: http.StatusOK, body: `{`, want: "failed to decode"},
		{name: "api error", status: http.StatusOK, body: `{"Response":"False","Error":"Request limit reached!"}`, want: "Request limit reached!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.GetByID(context.Background(), "tt1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCanceledContextSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, matrixDetail)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetByID(ctx, "tt0133093")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
