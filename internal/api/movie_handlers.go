package api

import (
	"log/slog"
	"net/http"

	"movie-catalog/internal/domain"
)

// ListMovies is the plain paginated catalog listing. It never applies free text.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := domain.SearchParams{
		Genre:     queryString(r, "genre"),
		Year:      queryInt(r, "year"),
		Rated:     queryString(r, "rating", "rated"),
		SortBy:    queryString(r, "sort_by", "sortBy"),
		SortOrder: queryString(r, "sort_order", "sortOrder"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit", "per_page"),
		ViewerID:  ViewerID(ctx),
	}
	page, err := h.search.List(ctx, params)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, page)
}

type movieResponse struct {
	Success bool          `json:"success"`
	Data    *domain.Movie `json:"data"`
}

func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
		return
	}
	movie, err := h.movies.Get(ctx, id, ViewerID(ctx))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movieResponse{Success: true, Data: movie})
}

type movieMutationResponse struct {
	Message string        `json:"message"`
	Movie   *domain.Movie `json:"movie,omitempty"`
	Data    *domain.Movie `json:"data,omitempty"`
}

func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.CreateMovieRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	movie, err := h.movies.Create(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(ctx, "Movie created via API", slog.Int64("movieID", movie.ID), slog.Int64("userID", ViewerID(ctx)))
	h.respondJSON(w, r, http.StatusCreated, movieMutationResponse{Message: translate(ctx, msgMovieCreated), Movie: movie})
}

func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
		return
	}
	var req domain.UpdateMovieRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	movie, err := h.movies.Update(ctx, id, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movieMutationResponse{Message: translate(ctx, msgMovieUpdated), Data: movie})
}

func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
		return
	}
	if err := h.movies.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondMessage(w, r, http.StatusOK, msgMovieDeleted)
}
