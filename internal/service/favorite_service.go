package service

import (
	"context"
	"fmt"
	"log/slog"

	"movie-catalog/internal/cache"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"
)

const (
	statsTopGenres = 10
	statsRecent    = 5
)

// FavoriteService is the favorites aggregator: membership changes, the
// per-movie count and per-user statistics.
type FavoriteService struct {
	favorites store.FavoriteStore
	cache     cache.MovieCache
	pages     PageConfig
	logger    *slog.Logger
}

func NewFavoriteService(favorites store.FavoriteStore, c cache.MovieCache, pages PageConfig, logger *slog.Logger) *FavoriteService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &FavoriteService{favorites: favorites, cache: c, pages: pages, logger: logger}
}

func checkMovieID(movieID int64) error {
	if movieID < 1 {
		return fieldError("movie_id", "The movie id must be at least 1.")
	}
	return nil
}

// Add fails with store.ErrAlreadyFavorited if the pair exists.
func (s *FavoriteService) Add(ctx context.Context, userID, movieID int64) (*domain.Favorite, int64, error) {
	if err := checkMovieID(movieID); err != nil {
		return nil, 0, err
	}
	fav, count, err := s.favorites.Add(ctx, userID, movieID)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Invalidate(ctx, movieID)
	return fav, count, nil
}

// Remove reports removed=false, without error, if the pair is absent.
func (s *FavoriteService) Remove(ctx context.Context, userID, movieID int64) (bool, int64, error) {
	if err := checkMovieID(movieID); err != nil {
		return false, 0, err
	}
	removed, count, err := s.favorites.Remove(ctx, userID, movieID)
	if err != nil {
		return false, 0, err
	}
	if removed {
		s.cache.Invalidate(ctx, movieID)
	}
	return removed, count, nil
}

// Toggle adds when absent and removes when present. movieID may reference a
// movie outside the catalog.
func (s *FavoriteService) Toggle(ctx context.Context, userID, movieID int64) (*domain.ToggleResult, error) {
	if err := checkMovieID(movieID); err != nil {
		return nil, err
	}
	res, err := s.favorites.Toggle(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, movieID)
	return res, nil
}

func (s *FavoriteService) IsFavorited(ctx context.Context, userID, movieID int64) (bool, error) {
	return s.favorites.Exists(ctx, userID, movieID)
}

func (s *FavoriteService) CountFor(ctx context.Context, movieID int64) (int64, error) {
	return s.favorites.CountForMovie(ctx, movieID)
}

// StatsFor returns the total, the top genres and the most recent favorites.
func (s *FavoriteService) StatsFor(ctx context.Context, userID int64) (*domain.FavoriteStats, error) {
	total, err := s.favorites.CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("favorite stats: %w", err)
	}
	genres, err := s.favorites.GenreBreakdown(ctx, userID, statsTopGenres)
	if err != nil {
		return nil, fmt.Errorf("favorite stats: %w", err)
	}
	recent, err := s.favorites.RecentForUser(ctx, userID, statsRecent)
	if err != nil {
		return nil, fmt.Errorf("favorite stats: %w", err)
	}
	return &domain.FavoriteStats{TotalFavorites: total, FavoritesByGenre: genres, RecentFavorites: recent}, nil
}

// List pages through the user's favorited movies, newest favorite first.
func (s *FavoriteService) List(ctx context.Context, userID int64, page, limit int) (*domain.MoviePage, error) {
	page, limit = s.pages.clamp(page, limit)
	movies, total, err := s.favorites.ListForUser(ctx, userID, limit, offsetFor(page, limit))
	if err != nil {
		return nil, err
	}
	last := lastPage(total, limit)
	return &domain.MoviePage{
		Data: movies,
		Pagination: domain.Pagination{
			CurrentPage:  page,
			LastPage:     last,
			PerPage:      limit,
			Total:        total,
			HasMorePages: page < last,
		},
		Filters: domain.AppliedFilters{SortBy: domain.SortRecency, SortOrder: domain.SortDesc},
	}, nil
}
