// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"movie-catalog/internal/domain"
)

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("movie with this imdb id already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrAlreadyFavorited   = errors.New("movie is already in favorites")
	ErrTokenNotFound      = errors.New("access token not found")
)

// MovieQuery is a compiled search: the predicate, order and window.
type MovieQuery struct {
	Where  Predicate
	SortBy domain.SortKey
	Order  domain.SortOrder
	Limit  int
	Offset int
}

// MovieStore is the persistence contract for the catalog.
type MovieStore interface {
	Create(ctx context.Context, movie *domain.Movie) error
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	GetByImdbID(ctx context.Context, imdbID string) (*domain.Movie, error)
	// ImdbIDTaken reports whether another movie (id != excludeID) owns imdbID.
	ImdbIDTaken(ctx context.Context, imdbID string, excludeID int64) (bool, error)
	Update(ctx context.Context, movie *domain.Movie) error
	// Delete removes the movie and every favorite that points at it.
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q MovieQuery) ([]*domain.Movie, int, error)
}

// FavoriteStore owns the favorites join table and the cached
// favorited_by_count column. Every mutation recomputes the count inside the
// same transaction.
type FavoriteStore interface {
	Add(ctx context.Context, userID, movieID int64) (*domain.Favorite, int64, error)
	// Remove returns removed=false, and no error, when the pair is absent.
	Remove(ctx context.Context, userID, movieID int64) (removed bool, count int64, err error)
	Toggle(ctx context.Context, userID, movieID int64) (*domain.ToggleResult, error)
	Exists(ctx context.Context, userID, movieID int64) (bool, error)
	CountForMovie(ctx context.Context, movieID int64) (int64, error)
	FavoritedIDs(ctx context.Context, userID int64, movieIDs []int64) (map[int64]bool, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Movie, int, error)
	CountForUser(ctx context.Context, userID int64) (int64, error)
	GenreBreakdown(ctx context.Context, userID int64, limit int) ([]domain.GenreCount, error)
	RecentForUser(ctx context.Context, userID int64, limit int) ([]domain.MovieSummary, error)
}

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user with their favorites and tokens and reports
	// the movies whose favorite counts changed.
	Delete(ctx context.Context, id int64) ([]int64, error)
}

type TokenStore interface {
	Create(ctx context.Context, token *domain.AccessToken) error
	Get(ctx context.Context, id string) (*domain.AccessToken, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteForUser revokes every token of the user except those in keep.
	DeleteForUser(ctx context.Context, userID int64, keep ...string) (int64, error)
}
