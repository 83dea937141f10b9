package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"movie-catalog/internal/cache"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"

	"github.com/go-playground/validator/v10"
)

// MovieService validates and applies catalog writes and serves single-movie reads.
type MovieService struct {
	movies    store.MovieStore
	favorites store.FavoriteStore
	cache     cache.MovieCache
	validator *validator.Validate
	logger    *slog.Logger
}

func NewMovieService(movies store.MovieStore, favorites store.FavoriteStore, c cache.MovieCache, v *validator.Validate, logger *slog.Logger) *MovieService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &MovieService{movies: movies, favorites: favorites, cache: c, validator: v, logger: logger}
}

// Create validates req and inserts the movie. A duplicate imdb_id is
// store.ErrMovieAlreadyExists, not a validation error.
func (s *MovieService) Create(ctx context.Context, req domain.CreateMovieRequest) (*domain.Movie, error) {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return nil, err
	}
	movie := domain.NewMovie(req)
	if movie.ImdbID != nil {
		taken, err := s.movies.ImdbIDTaken(ctx, *movie.ImdbID, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, store.ErrMovieAlreadyExists
		}
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Movie created", slog.Int64("movieID", movie.ID), slog.String("title", movie.Title))
	return movie, nil
}

// Get returns the movie, with is_favorited set for viewerID > 0.
func (s *MovieService) Get(ctx context.Context, id, viewerID int64) (*domain.Movie, error) {
	if id <= 0 {
		return nil, store.ErrMovieNotFound
	}
	movie, ok := s.cache.Get(ctx, id)
	if !ok {
		var err error
		if movie, err = s.movies.GetByID(ctx, id); err != nil {
			return nil, err
		}
		s.cache.Set(ctx, movie)
	}
	if viewerID > 0 {
		favorited, err := s.favorites.Exists(ctx, viewerID, id)
		if err != nil {
			return nil, fmt.Errorf("check favorite: %w", err)
		}
		movie.IsFavorited = favorited
	}
	return movie, nil
}

// Update applies only the supplied fields. The imdb_id uniqueness check
// ignores the movie being updated.
func (s *MovieService) Update(ctx context.Context, id int64, req domain.UpdateMovieRequest) (*domain.Movie, error) {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return nil, err
	}
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	movie.Apply(req)
	if movie.ImdbID != nil && req.ImdbID != nil {
		taken, err := s.movies.ImdbIDTaken(ctx, *movie.ImdbID, movie.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, store.ErrMovieAlreadyExists
		}
	}
	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	s.logger.InfoContext(ctx, "Movie updated", slog.Int64("movieID", id))
	return movie, nil
}

// Delete removes the movie and its favorites.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	s.logger.InfoContext(ctx, "Movie deleted", slog.Int64("movieID", id))
	return nil
}

// ImdbIDExists is used by the importer to skip movies already in the catalog.
func (s *MovieService) ImdbIDExists(ctx context.Context, imdbID string) (bool, error) {
	_, err := s.movies.GetByImdbID(ctx, imdbID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrMovieNotFound):
		return false, nil
	}
	return false, err
}
