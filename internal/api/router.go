// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const Version = "2.0.0"

var features = []string{"movies", "favorites", "search", "graphql", "auth", "email-verification"}

type healthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Version         string    `json:"version"`
	Features        []string  `json:"features"`
	GraphQLEndpoint string    `json:"graphql_endpoint"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, healthResponse{
		Status:          "ok",
		Timestamp:       time.Now().UTC(),
		Version:         Version,
		Features:        features,
		GraphQLEndpoint: "/graphql",
	})
}

// NewRouter wires every REST route. graphqlHandler may be nil.
//
// Middleware runs as request logger, locale, auth, then the password-change gate.
// Logout and change-password skip the gate so a flagged user can clear it.
func NewRouter(h *Handler, graphqlHandler http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger(h.logger), Locale)
	router.NotFoundHandler = RequestLogger(h.logger)(Locale(http.HandlerFunc(h.NotFound)))

	optional := func(f http.HandlerFunc) http.Handler { return h.OptionalAuth(h.PasswordChangeGate(f)) }
	protected := func(f http.HandlerFunc) http.Handler { return h.RequireAuth(h.PasswordChangeGate(f)) }
	session := func(f http.HandlerFunc) http.Handler { return h.RequireAuth(f) }

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/forgot-password", h.ForgotPassword).Methods(http.MethodPost)
	authRouter.HandleFunc("/email/verify", h.VerifyEmail).Methods(http.MethodGet)
	authRouter.Handle("/logout", session(h.Logout)).Methods(http.MethodPost)
	authRouter.Handle("/change-password", session(h.ChangePassword)).Methods(http.MethodPost)
	authRouter.Handle("/me", protected(h.Me)).Methods(http.MethodGet)
	authRouter.Handle("/profile", protected(h.UpdateProfile)).Methods(http.MethodPut)
	authRouter.Handle("/email/resend", protected(h.ResendVerification)).Methods(http.MethodPost)

	moviesRouter := api.PathPrefix("/movies").Subrouter()
	moviesRouter.Handle("", optional(h.ListMovies)).Methods(http.MethodGet)
	moviesRouter.Handle("", protected(h.CreateMovie)).Methods(http.MethodPost)
	moviesRouter.Handle("/{id:[0-9]+}", optional(h.GetMovie)).Methods(http.MethodGet)
	moviesRouter.Handle("/{id:[0-9]+}", protected(h.UpdateMovie)).Methods(http.MethodPut)
	moviesRouter.Handle("/{id:[0-9]+}", protected(h.DeleteMovie)).Methods(http.MethodDelete)

	favoritesRouter := api.PathPrefix("/favorites").Subrouter()
	favoritesRouter.Handle("", protected(h.ListFavorites)).Methods(http.MethodGet)
	favoritesRouter.Handle("", protected(h.AddFavorite)).Methods(http.MethodPost)
	favoritesRouter.Handle("/toggle", protected(h.ToggleFavorite)).Methods(http.MethodPost)
	favoritesRouter.Handle("/stats", protected(h.FavoriteStats)).Methods(http.MethodGet)
	favoritesRouter.Handle("/check/{movieId:[0-9]+}", protected(h.CheckFavorite)).Methods(http.MethodGet)
	favoritesRouter.Handle("/{movieId:[0-9]+}", protected(h.RemoveFavorite)).Methods(http.MethodDelete)

	if graphqlHandler != nil {
		router.Handle("/graphql", h.OptionalAuth(h.PasswordChangeGate(graphqlHandler))).Methods(http.MethodGet, http.MethodPost)
	}
	return router
}
