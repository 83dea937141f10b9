// internal/domain/movie.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Movie is the catalog record shared by the REST, GraphQL and gRPC surfaces.
type Movie struct {
	ID            int64         `json:"id" db:"id"`
	ImdbID        *string       `json:"imdb_id" db:"imdb_id"`
	Title         string        `json:"title" db:"title"`
	Year          int           `json:"year" db:"year"`
	Rated         *string       `json:"rated" db:"rated"`
	Released      *string       `json:"released" db:"released"`
	Runtime       *string       `json:"runtime" db:"runtime"`
	Genre         *string       `json:"genre" db:"genre"`
	Director      *string       `json:"director" db:"director"`
	Writer        *string       `json:"writer" db:"writer"`
	Actors        *string       `json:"actors" db:"actors"`
	Plot          *string       `json:"plot" db:"plot"`
	Language      *string       `json:"language" db:"language"`
	Country       *string       `json:"country" db:"country"`
	Awards        *string       `json:"awards" db:"awards"`
	Poster        *string       `json:"poster" db:"poster"`
	ImdbRating    *float64      `json:"imdb_rating" db:"imdb_rating"`
	ImdbVotes     *int64        `json:"imdb_votes" db:"imdb_votes"`
	Metascore     *int          `json:"metascore" db:"metascore"`
	Ratings       RatingSources `json:"ratings" db:"ratings"`
	FavoriteCount int64         `json:"favorite_count" db:"favorited_by_count"`
	IsFavorited   bool          `json:"is_favorited" db:"-"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// RatingSource is one third-party score, e.g. {"Rotten Tomatoes", "87%"}.
type RatingSource struct {
	Source string `json:"source" validate:"max=100"`
	Value  string `json:"value" validate:"max=50"`
}

// RatingSources is stored as a JSON text column.
type RatingSources []RatingSource

// Clean drops entries without both a source and a value.
func (r RatingSources) Clean() RatingSources {
	out := make(RatingSources, 0, len(r))
	for _, rs := range r {
		rs.Source = strings.TrimSpace(rs.Source)
		rs.Value = strings.TrimSpace(rs.Value)
		if rs.Source == "" || rs.Value == "" {
			continue
		}
		out = append(out, rs)
	}
	return out
}

// Value implements driver.Valuer.
func (r RatingSources) Value() (driver.Value, error) {
	if r == nil {
		r = RatingSources{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ratings: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *RatingSources) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = RatingSources{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported ratings column type %T", src)
	}
	if len(raw) == 0 {
		*r = RatingSources{}
		return nil
	}
	var out RatingSources
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to unmarshal ratings: %w", err)
	}
	*r = out.Clean()
	return nil
}

// MovieSummary is the short projection used in favorite statistics.
type MovieSummary struct {
	ID         int64    `json:"id" db:"id"`
	Title      string   `json:"title" db:"title"`
	Year       int      `json:"year" db:"year"`
	Poster     *string  `json:"poster" db:"poster"`
	Genre      *string  `json:"genre" db:"genre"`
	ImdbRating *float64 `json:"imdb_rating" db:"imdb_rating"`
}

// CreateMovieRequest is the body of POST /api/movies and the importer's output.
type CreateMovieRequest struct {
	Title      string         `json:"title" validate:"required,notblank,max=255"`
	Year       int            `json:"year" validate:"required,gte=1900,notfuture"`
	ImdbID     *string        `json:"imdb_id" validate:"omitempty,max=20"`
	Rated      *string        `json:"rated" validate:"omitempty,max=20"`
	Released   *string        `json:"released" validate:"omitempty,max=50"`
	Runtime    *string        `json:"runtime" validate:"omitempty,max=50"`
	Genre      *string        `json:"genre" validate:"omitempty,max=255"`
	Director   *string        `json:"director" validate:"omitempty,max=255"`
	Writer     *string        `json:"writer" validate:"omitempty,max=255"`
	Actors     *string        `json:"actors" validate:"omitempty,max=500"`
	Plot       *string        `json:"plot" validate:"omitempty,max=1000"`
	Language   *string        `json:"language" validate:"omitempty,max=100"`
	Country    *string        `json:"country" validate:"omitempty,max=100"`
	Awards     *string        `json:"awards" validate:"omitempty,max=255"`
	Poster     *string        `json:"poster" validate:"omitempty,url,max=500"`
	ImdbRating *float64       `json:"imdb_rating" validate:"omitempty,gte=0,lte=10"`
	ImdbVotes  *int64         `json:"imdb_votes" validate:"omitempty,gte=0"`
	Metascore  *int           `json:"metascore" validate:"omitempty,gte=0,lte=100"`
	Ratings    []RatingSource `json:"ratings" validate:"omitempty,dive"`
}

// UpdateMovieRequest only carries the fields the client sent; nil means "leave as is".
type UpdateMovieRequest struct {
	Title      *string        `json:"title" validate:"omitempty,notblank,max=255"`
	Year       *int           `json:"year" validate:"omitempty,gte=1900,notfuture"`
	ImdbID     *string        `json:"imdb_id" validate:"omitempty,max=20"`
	Rated      *string        `json:"rated" validate:"omitempty,max=20"`
	Released   *string        `json:"released" validate:"omitempty,max=50"`
	Runtime    *string        `json:"runtime" validate:"omitempty,max=50"`
	Genre      *string        `json:"genre" validate:"omitempty,max=255"`
	Director   *string        `json:"director" validate:"omitempty,max=255"`
	Writer     *string        `json:"writer" validate:"omitempty,max=255"`
	Actors     *string        `json:"actors" validate:"omitempty,max=500"`
	Plot       *string        `json:"plot" validate:"omitempty,max=1000"`
	Language   *string        `json:"language" validate:"omitempty,max=100"`
	Country    *string        `json:"country" validate:"omitempty,max=100"`
	Awards     *string        `json:"awards" validate:"omitempty,max=255"`
	Poster     *string        `json:"poster" validate:"omitempty,url,max=500"`
	ImdbRating *float64       `json:"imdb_rating" validate:"omitempty,gte=0,lte=10"`
	ImdbVotes  *int64         `json:"imdb_votes" validate:"omitempty,gte=0"`
	Metascore  *int           `json:"metascore" validate:"omitempty,gte=0,lte=100"`
	Ratings    []RatingSource `json:"ratings" validate:"omitempty,dive"`
}

// NewMovie builds a Movie from a validated create request.
func NewMovie(req CreateMovieRequest) *Movie {
	return &Movie{
		Title:      strings.TrimSpace(req.Title),
		Year:       req.Year,
		ImdbID:     blankToNil(req.ImdbID),
		Rated:      blankToNil(req.Rated),
		Released:   blankToNil(req.Released),
		Runtime:    blankToNil(req.Runtime),
		Genre:      blankToNil(req.Genre),
		Director:   blankToNil(req.Director),
		Writer:     blankToNil(req.Writer),
		Actors:     blankToNil(req.Actors),
		Plot:       blankToNil(req.Plot),
		Language:   blankToNil(req.Language),
		Country:    blankToNil(req.Country),
		Awards:     blankToNil(req.Awards),
		Poster:     blankToNil(req.Poster),
		ImdbRating: req.ImdbRating,
		ImdbVotes:  req.ImdbVotes,
		Metascore:  req.Metascore,
		Ratings:    RatingSources(req.Ratings).Clean(),
	}
}

// Apply writes the supplied fields of req onto m.
func (m *Movie) Apply(req UpdateMovieRequest) {
	if req.Title != nil {
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.Year != nil {
		m.Year = *req.Year
	}
	setString(&m.ImdbID, req.ImdbID)
	setString(&m.Rated, req.Rated)
	setString(&m.Released, req.Released)
	setString(&m.Runtime, req.Runtime)
	setString(&m.Genre, req.Genre)
	setString(&m.Director, req.Director)
	setString(&m.Writer, req.Writer)
	setString(&m.Actors, req.Actors)
	setString(&m.Plot, req.Plot)
	setString(&m.Language, req.Language)
	setString(&m.Country, req.Country)
	setString(&m.Awards, req.Awards)
	setString(&m.Poster, req.Poster)
	if req.ImdbRating != nil {
		m.ImdbRating = req.ImdbRating
	}
	if req.ImdbVotes != nil {
		m.ImdbVotes = req.ImdbVotes
	}
	if req.Metascore != nil {
		m.Metascore = req.Metascore
	}
	if req.Ratings != nil {
		m.Ratings = RatingSources(req.Ratings).Clean()
	}
}

// An empty string in an update clears the column.
func setString(dst **string, src *string) {
	if src == nil {
		return
	}
	*dst = blankToNil(src)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
