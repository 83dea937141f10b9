package service

import (
	"context"
	"errors"
	"log/slog"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"
)

// ExternalCatalog is a source of movies to import, such as OMDb.
type ExternalCatalog interface {
	SearchIDs(ctx context.Context, term string, page int) ([]string, error)
	Lookup(ctx context.Context, imdbID string) (*domain.CreateMovieRequest, error)
}

// DefaultSeedTerms cover a broad spread of titles.
var DefaultSeedTerms = []string{
	"action", "adventure", "comedy", "drama", "thriller", "horror", "romance",
	"science", "fantasy", "crime", "mystery", "war", "love", "star", "man",
}

type SeedOptions struct {
	Count        int
	Terms        []string
	PagesPerTerm int
}

type ImportSummary struct {
	Seeded     int `json:"seeded"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// ImportService fills the catalog from an ExternalCatalog.
type ImportService struct {
	source ExternalCatalog
	movies *MovieService
	logger *slog.Logger
}

func NewImportService(source ExternalCatalog, movies *MovieService, logger *slog.Logger) *ImportService {
	return &ImportService{source: source, movies: movies, logger: logger}
}

// Seed imports up to opts.Count movies. Source failures are logged and
// counted; only a cancelled context stops the run early with an error.
func (s *ImportService) Seed(ctx context.Context, opts SeedOptions) (ImportSummary, error) {
	if opts.Count <= 0 {
		opts.Count = 100
	}
	if len(opts.Terms) == 0 {
		opts.Terms = DefaultSeedTerms
	}
	if opts.PagesPerTerm <= 0 {
		opts.PagesPerTerm = 3
	}

	var sum ImportSummary
	seen := make(map[string]bool)
	for _, term := range opts.Terms {
		for page := 1; page <= opts.PagesPerTerm; page++ {
			if sum.Seeded >= opts.Count {
				return sum, nil
			}
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			ids, err := s.source.SearchIDs(ctx, term, page)
			if err != nil {
				s.logger.WarnContext(ctx, "Import search failed", slog.String("term", term), slog.Int("page", page), slog.String("error", err.Error()))
				sum.Failed++
				break
			}
			for _, imdbID := range ids {
				if sum.Seeded >= opts.Count {
					return sum, nil
				}
				if seen[imdbID] {
					continue
				}
				seen[imdbID] = true
				s.importOne(ctx, imdbID, &sum)
			}
		}
	}
	return sum, ctx.Err()
}

func (s *ImportService) importOne(ctx context.Context, imdbID string, sum *ImportSummary) {
	exists, err := s.movies.ImdbIDExists(ctx, imdbID)
	if err != nil {
		s.logger.WarnContext(ctx, "Import duplicate check failed", slog.String("imdbID", imdbID), slog.String("error", err.Error()))
		sum.Failed++
		return
	}
	if exists {
		sum.Duplicates++
		return
	}
	req, err := s.source.Lookup(ctx, imdbID)
	if err != nil {
		s.logger.WarnContext(ctx, "Import lookup failed", slog.String("imdbID", imdbID), slog.String("error", err.Error()))
		sum.Failed++
		return
	}
	if req.Poster == nil || req.Title == "" || req.Year == 0 {
		sum.Skipped++
		return
	}
	if _, err := s.movies.Create(ctx, *req); err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, store.ErrMovieAlreadyExists):
			sum.Duplicates++
		case errors.As(err, &verr):
			s.logger.DebugContext(ctx, "Import skipped invalid movie", slog.String("imdbID", imdbID), slog.String("error", err.Error()))
			sum.Skipped++
		default:
			s.logger.WarnContext(ctx, "Import create failed", slog.String("imdbID", imdbID), slog.String("error", err.Error()))
			sum.Failed++
		}
		return
	}
	sum.Seeded++
}
