package omdb

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"movie-catalog/internal/domain"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

var (
	posterExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}
	posterHosts      = map[string]bool{"m.media-amazon.com": true, "ia.media-imdb.com": true}
)

// Transform maps an OMDb record onto a create request. "N/A" and blank
// fields become nil; unparsable numbers are dropped rather than rejected.
func Transform(m *Movie) domain.CreateMovieRequest {
	req := domain.CreateMovieRequest{
		Title:      strings.TrimSpace(m.Title),
		Year:       ParseYear(m.Year),
		ImdbID:     text(m.ImdbID),
		Rated:      text(m.Rated),
		Released:   text(m.Released),
		Runtime:    text(m.Runtime),
		Genre:      text(m.Genre),
		Director:   text(m.Director),
		Writer:     text(m.Writer),
		Actors:     text(m.Actors),
		Plot:       text(m.Plot),
		Language:   text(m.Language),
		Country:    text(m.Country),
		Awards:     text(m.Awards),
		Poster:     ValidPoster(m.Poster),
		ImdbRating: ParseRating(m.ImdbRating),
		ImdbVotes:  ParseVotes(m.ImdbVotes),
		Metascore:  parseMetascore(m.Metascore),
	}
	ratings := make(domain.RatingSources, 0, len(m.Ratings))
	for _, r := range m.Ratings {
		ratings = append(ratings, domain.RatingSource{Source: r.Source, Value: r.Value})
	}
	req.Ratings = ratings.Clean()
	return req
}

func text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return nil
	}
	return &s
}

// ParseYear takes the first four digits, so "2020–2023" is 2020. Zero means unknown.
func ParseYear(s string) int {
	match := yearPattern.FindString(s)
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}

// ParseRating accepts 0..10.
func ParseRating(s string) *float64 {
	v := text(s)
	if v == nil {
		return nil
	}
	rating, err := strconv.ParseFloat(*v, 64)
	if err != nil || rating < 0 || rating > 10 {
		return nil
	}
	return &rating
}

// ParseVotes parses "1,234,567".
func ParseVotes(s string) *int64 {
	v := text(s)
	if v == nil {
		return nil
	}
	votes, err := strconv.ParseInt(strings.ReplaceAll(*v, ",", ""), 10, 64)
	if err != nil || votes < 0 {
		return nil
	}
	return &votes
}

func parseMetascore(s string) *int {
	v := text(s)
	if v == nil {
		return nil
	}
	score, err := strconv.Atoi(*v)
	if err != nil || score < 0 || score > 100 {
		return nil
	}
	return &score
}

// ValidPoster keeps absolute http(s) URLs that end in an image extension or
// come from a known poster host.
func ValidPoster(s string) *string {
	v := text(s)
	if v == nil {
		return nil
	}
	u, err := url.Parse(*v)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if posterExtensions[ext] || (ext == "" && posterHosts[strings.ToLower(u.Hostname())]) {
		return v
	}
	return nil
}
