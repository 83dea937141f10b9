// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"movie-catalog/internal/service"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/auth"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Handler serves the REST API on top of the catalog services.
type Handler struct {
	movies    *service.MovieService
	favorites *service.FavoriteService
	search    *service.SearchService
	auth      *service.AuthService
	logger    *slog.Logger
}

func NewHandler(movies *service.MovieService, favorites *service.FavoriteService, search *service.SearchService,
	authSvc *service.AuthService, logger *slog.Logger) *Handler {
	return &Handler{
		movies:    movies,
		favorites: favorites,
		search:    search,
		auth:      authSvc,
		logger:    logger,
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

// respondError writes {"error": msg} with msg translated for the request.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, key string) {
	h.respondJSON(w, r, status, errorResponse{Error: translate(r.Context(), key)})
}

func (h *Handler) respondMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	h.respondJSON(w, r, status, messageResponse{Message: translate(r.Context(), key)})
}

// respondServiceError maps service and store errors onto status codes.
// Anything unrecognized is logged and reported as a generic 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.respondJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: translate(r.Context(), msgInvalidData), Fields: verr.Fields})
	case errors.Is(err, store.ErrMovieNotFound):
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
	case errors.Is(err, store.ErrUserNotFound):
		h.respondError(w, r, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, store.ErrMovieAlreadyExists):
		h.respondError(w, r, http.StatusConflict, msgImdbTaken)
	case errors.Is(err, store.ErrAlreadyFavorited):
		h.respondError(w, r, http.StatusConflict, msgAlreadyFavorited)
	case errors.Is(err, store.ErrUserAlreadyExists):
		h.respondJSON(w, r, http.StatusConflict, errorResponse{
			Error:  translate(r.Context(), msgEmailTaken),
			Fields: map[string]string{"email": translate(r.Context(), msgEmailTaken)},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		h.respondError(w, r, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, auth.ErrInvalidToken):
		h.respondError(w, r, http.StatusUnauthorized, msgUnauthenticated)
	default:
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, msgServerError)
	}
}

// decodeJSON reads a JSON body into dst, answering 400 itself on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidPayload)
		return false
	}
	return true
}

// pathID parses a positive integer route variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt returns the first parseable value among keys, or 0.
func queryInt(r *http.Request, keys ...string) int {
	q := r.URL.Query()
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func queryString(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// NotFound answers unknown routes with the JSON error shape.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, msgNotFound)
}
