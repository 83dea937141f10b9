package api

import (
	"errors"
	"log/slog"
	"net/http"

	"movie-catalog/internal/domain"
	"movie-catalog/pkg/auth"
)

type authResponse struct {
	Message string `json:"message"`
	*domain.AuthResponse
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Register request received", slog.String("path", r.URL.Path))
	var req domain.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.auth.Register(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, authResponse{Message: translate(ctx, msgRegistered), AuthResponse: resp})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.auth.Login(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, authResponse{Message: translate(ctx, msgLoggedIn), AuthResponse: resp})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	if err := h.auth.Logout(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondMessage(w, r, http.StatusOK, msgLoggedOut)
}

type userResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	h.respondJSON(w, r, http.StatusOK, userResponse{User: id.User})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)
	var req domain.UpdateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.UpdateProfile(ctx, id, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, userResponse{Message: translate(ctx, msgProfileUpdated), User: user})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)
	var req domain.ChangePasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.ChangePassword(ctx, id, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, userResponse{Message: translate(ctx, msgPasswordChanged), User: user})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondMessage(w, r, http.StatusOK, msgResetSent)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.URL.Query().Get("token")
	if token == "" {
		h.respondJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:  translate(ctx, msgInvalidData),
			Fields: map[string]string{"token": translate(ctx, msgVerificationTokenMiss)},
		})
		return
	}
	user, err := h.auth.VerifyEmail(ctx, token)
	if errors.Is(err, auth.ErrInvalidToken) {
		h.respondError(w, r, http.StatusBadRequest, msgInvalidVerification)
		return
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, userResponse{Message: translate(ctx, msgEmailVerified), User: user})
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	sent, err := h.auth.ResendVerification(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !sent {
		h.respondMessage(w, r, http.StatusOK, msgAlreadyVerified)
		return
	}
	h.respondMessage(w, r, http.StatusOK, msgVerificationSent)
}
