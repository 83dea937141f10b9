// internal/api/middleware.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"movie-catalog/internal/service"

	"github.com/google/uuid"
)

// ContextKey is used for request-scoped values set by middleware.
type ContextKey string

const (
	// IdentityKey holds the *service.Identity of an authenticated caller.
	IdentityKey ContextKey = "identity"
	// RequestIDKey holds the request id string.
	RequestIDKey ContextKey = "requestID"
)

const requestIDHeader = "X-Request-ID"

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(ctx context.Context) (*service.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*service.Identity)
	return id, ok && id != nil
}

// ViewerID is the caller's user id, or 0 for anonymous requests.
func ViewerID(ctx context.Context) int64 {
	if id, ok := IdentityFrom(ctx); ok {
		return id.User.ID
	}
	return 0
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *service.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.InfoContext(ctx, "HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("requestID", requestID),
			)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.logger.WarnContext(r.Context(), "Authorization header missing or malformed", slog.String("path", r.URL.Path))
			h.respondError(w, r, http.StatusUnauthorized, msgUnauthenticated)
			return
		}
		id, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Invalid or expired token", slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusUnauthorized, msgUnauthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise serves the request anonymously.
func (h *Handler) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		id, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			h.logger.DebugContext(r.Context(), "Ignoring invalid optional token", slog.String("error", err.Error()))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

type passwordChangeResponse struct {
	Error               string `json:"error"`
	Message             string `json:"message"`
	NeedsPasswordChange bool   `json:"needs_password_change"`
}

// PasswordChangeGate blocks callers flagged for a forced password change.
func (h *Handler) PasswordChangeGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFrom(r.Context()); ok && id.User.NeedsPasswordChange {
			h.respondJSON(w, r, http.StatusForbidden, passwordChangeResponse{
				Error:               translate(r.Context(), msgPasswordChange),
				Message:             translate(r.Context(), msgPasswordChangeDetail),
				NeedsPasswordChange: true,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
