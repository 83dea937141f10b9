package api

import (
	"net/http"

	"movie-catalog/internal/domain"
)

// favoriteUser returns the authenticated user id. RequireAuth guarantees it.
func favoriteUser(r *http.Request) int64 {
	return ViewerID(r.Context())
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	page, err := h.favorites.List(r.Context(), favoriteUser(r), queryInt(r, "page"), queryInt(r, "limit", "per_page"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, page)
}

type addFavoriteResponse struct {
	Message            string           `json:"message"`
	Favorite           *domain.Favorite `json:"favorite"`
	MovieFavoriteCount int64            `json:"movie_favorite_count"`
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req domain.FavoriteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	fav, count, err := h.favorites.Add(r.Context(), favoriteUser(r), req.MovieID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, addFavoriteResponse{
		Message:            translate(r.Context(), msgFavoriteAdded),
		Favorite:           fav,
		MovieFavoriteCount: count,
	})
}

type removeFavoriteResponse struct {
	Message            string `json:"message"`
	MovieFavoriteCount int64  `json:"movie_favorite_count"`
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(r, "movieId")
	if !ok {
		h.respondError(w, r, http.StatusNotFound, msgFavoriteNotFound)
		return
	}
	removed, count, err := h.favorites.Remove(r.Context(), favoriteUser(r), movieID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !removed {
		h.respondError(w, r, http.StatusNotFound, msgFavoriteNotFound)
		return
	}
	h.respondJSON(w, r, http.StatusOK, removeFavoriteResponse{
		Message:            translate(r.Context(), msgFavoriteRemoved),
		MovieFavoriteCount: count,
	})
}

type toggleFavoriteResponse struct {
	Message string `json:"message"`
	*domain.ToggleResult
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req domain.FavoriteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	res, err := h.favorites.Toggle(r.Context(), favoriteUser(r), req.MovieID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	status, key := http.StatusOK, msgFavoriteRemoved
	if res.Added {
		status, key = http.StatusCreated, msgFavoriteAdded
	}
	h.respondJSON(w, r, status, toggleFavoriteResponse{Message: translate(r.Context(), key), ToggleResult: res})
}

type checkFavoriteResponse struct {
	IsFavorited   bool  `json:"is_favorited"`
	FavoriteCount int64 `json:"favorite_count"`
}

func (h *Handler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID, ok := pathID(r, "movieId")
	if !ok {
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
		return
	}
	favorited, err := h.favorites.IsFavorited(ctx, favoriteUser(r), movieID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	count, err := h.favorites.CountFor(ctx, movieID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, checkFavoriteResponse{IsFavorited: favorited, FavoriteCount: count})
}

func (h *Handler) FavoriteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.favorites.StatsFor(r.Context(), favoriteUser(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, stats)
}
