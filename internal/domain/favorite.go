package domain

import "time"

// Favorite links a user and a movie; one row per pair.
type Favorite struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	MovieID   int64     `json:"movie_id" db:"movie_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FavoriteRequest is the body of POST /api/favorites and /api/favorites/toggle.
type FavoriteRequest struct {
	MovieID int64 `json:"movie_id" validate:"required,min=1"`
}

// ToggleResult reports which branch Toggle took and the count afterwards.
type ToggleResult struct {
	Added    bool      `json:"is_favorited"`
	Count    int64     `json:"movie_favorite_count"`
	Favorite *Favorite `json:"favorite,omitempty"`
}

// GenreCount is one row of the per-genre breakdown.
type GenreCount struct {
	Genre string `json:"genre" db:"genre"`
	Count int64  `json:"count" db:"count"`
}

// FavoriteStats summarizes a user's favorites.
type FavoriteStats struct {
	TotalFavorites   int64          `json:"total_favorites"`
	FavoritesByGenre []GenreCount   `json:"favorites_by_genre"`
	RecentFavorites  []MovieSummary `json:"recent_favorites"`
}
