// Package omdb talks to the OMDb API and maps its payloads onto catalog requests.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movie-catalog/internal/domain"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.omdbapi.com/"

// ErrNotFound is OMDb's "Movie not found!" answer and any empty search.
var ErrNotFound = errors.New("omdb: not found")

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client is safe for concurrent use; every request waits on the shared limiter.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("omdb: api key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("omdb: invalid base url: %w", err)
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:  logger,
	}, nil
}

// SearchResult is one row of an OMDb title search.
type SearchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type searchResponse struct {
	Search       []SearchResult `json:"Search"`
	TotalResults string         `json:"totalResults"`
	Response     string         `json:"Response"`
	Error        string         `json:"Error"`
}

// Rating is one entry of the Ratings array.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Movie is the full-detail payload for ?i=.
type Movie struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	ImdbRating string   `json:"imdbRating"`
	ImdbVotes  string   `json:"imdbVotes"`
	ImdbID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error"`
}

// Search returns one page (10 rows) of movies matching title, and the total hit count.
func (c *Client) Search(ctx context.Context, title string, page int) ([]SearchResult, int, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"s":    {title},
		"page": {strconv.Itoa(page)},
		"type": {"movie"},
	}
	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, 0, err
	}
	if resp.Response == "False" {
		if resp.Error == "Movie not found!" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("omdb: %s", resp.Error)
	}
	total, _ := strconv.Atoi(resp.TotalResults)
	return resp.Search, total, nil
}

// GetByID fetches the full record, with the long plot.
func (c *Client) GetByID(ctx context.Context, imdbID string) (*Movie, error) {
	params := url.Values{
		"i":    {imdbID},
		"plot": {"full"},
	}
	var movie Movie
	if err := c.get(ctx, params, &movie); err != nil {
		return nil, err
	}
	if movie.Response == "False" {
		if movie.Error == "Incorrect IMDb ID." || movie.Error == "Movie not found!" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("omdb: %s", movie.Error)
	}
	return &movie, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("omdb: rate limiter: %w", err)
	}
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("omdb: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("omdb: request failed: %w", err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "OMDb request", slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("omdb: invalid api key")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb: unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("omdb: failed to decode response: %w", err)
	}
	return nil
}

// SearchIDs returns the imdb ids of one search page.
func (c *Client) SearchIDs(ctx context.Context, term string, page int) ([]string, error) {
	results, _, err := c.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.ImdbID != "" {
			ids = append(ids, r.ImdbID)
		}
	}
	return ids, nil
}

// Lookup fetches imdbID and transforms it into a create request.
func (c *Client) Lookup(ctx context.Context, imdbID string) (*domain.CreateMovieRequest, error) {
	movie, err := c.GetByID(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	req := Transform(movie)
	return &req, nil
}
