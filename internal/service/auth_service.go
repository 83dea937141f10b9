// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"movie-catalog/internal/cache"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const temporaryPasswordLength = 12

var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is an authenticated caller: the user and the token they presented.
type Identity struct {
	User    *domain.User
	TokenID string
}

// AuthService owns accounts, password flows and revocable bearer tokens.
type AuthService struct {
	users     store.UserStore
	tokens    store.TokenStore
	cache     cache.MovieCache
	manager   auth.TokenManager
	mailer    Mailer
	validator *validator.Validate
	publicURL string
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(users store.UserStore, tokens store.TokenStore, c cache.MovieCache, manager auth.TokenManager,
	mailer Mailer, v *validator.Validate, publicURL string, logger *slog.Logger) *AuthService {
	if c == nil {
		c = cache.NoopCache{}
	}
	if mailer == nil {
		mailer = LogMailer{Logger: logger}
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		cache:     c,
		manager:   manager,
		mailer:    mailer,
		validator: v,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the account, issues a token and mails a verification link.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User registered", slog.Int64("userID", user.ID))
	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "Failed to send verification mail", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
	}
	return &domain.AuthResponse{User: user, Token: token, TokenType: "Bearer", NeedsPasswordChange: user.NeedsPasswordChange}, nil
}

// Login checks credentials, revokes the user's previous tokens and issues a new one.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		s.logger.WarnContext(ctx, "Login attempt for unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "Invalid password attempt", slog.Int64("userID", user.ID))
		return nil, ErrInvalidCredentials
	}
	if _, err := s.tokens.DeleteForUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("revoke previous tokens: %w", err)
	}
	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return &domain.AuthResponse{User: user, Token: token, TokenType: "Bearer", NeedsPasswordChange: user.NeedsPasswordChange}, nil
}

func (s *AuthService) issue(ctx context.Context, userID int64) (string, error) {
	tokenID := uuid.NewString()
	signed, expiresAt, err := s.manager.Generate(userID, tokenID)
	if err != nil {
		return "", err
	}
	row := &domain.AccessToken{ID: tokenID, UserID: userID, CreatedAt: s.now(), ExpiresAt: expiresAt.UTC()}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token. Every failure mode, including a
// revoked token or a deleted user, is auth.ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*Identity, error) {
	claims, err := s.manager.Validate(bearer)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	row, err := s.tokens.Get(ctx, claims.ID)
	if errors.Is(err, store.ErrTokenNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if row.UserID != claims.UserID || !row.ExpiresAt.After(s.now()) {
		return nil, auth.ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, row.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Touch(ctx, row.ID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "Failed to touch access token", slog.String("error", err.Error()))
	}
	return &Identity{User: user, TokenID: row.ID}, nil
}

// Logout revokes the presented token only.
func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	err := s.tokens.Delete(ctx, id.TokenID)
	if err != nil && !errors.Is(err, store.ErrTokenNotFound) {
		return err
	}
	s.logger.InfoContext(ctx, "User logged out", slog.Int64("userID", id.User.ID))
	return nil
}

// ChangePassword replaces the password, clears the forced-change flag and
// revokes every other session.
func (s *AuthService) ChangePassword(ctx context.Context, id *Identity, req domain.ChangePasswordRequest) (*domain.User, error) {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id.User.ID)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return nil, fieldError("current_password", "The current password is incorrect.")
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.NeedsPasswordChange = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	revoked, err := s.tokens.DeleteForUser(ctx, user.ID, id.TokenID)
	if err != nil {
		return nil, fmt.Errorf("revoke other tokens: %w", err)
	}
	s.logger.InfoContext(ctx, "Password changed", slog.Int64("userID", user.ID), slog.Int64("revokedTokens", revoked))
	return user, nil
}

// UpdateProfile changes name and email. A new email clears the verification.
func (s *AuthService) UpdateProfile(ctx context.Context, id *Identity, req domain.UpdateProfileRequest) (*domain.User, error) {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id.User.ID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	emailChanged := false
	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		taken, err := s.users.EmailTaken(ctx, *req.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, store.ErrUserAlreadyExists
		}
		user.Email = *req.Email
		user.EmailVerifiedAt = nil
		emailChanged = true
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if emailChanged {
		if err := s.sendVerification(ctx, user); err != nil {
			s.logger.WarnContext(ctx, "Failed to send verification mail", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		}
	}
	return user, nil
}

// ForgotPassword mails a temporary password. Unknown emails are not an error.
func (s *AuthService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	if err := validateStruct(ctx, s.validator, req); err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		s.logger.InfoContext(ctx, "Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.ResetPassword(ctx, user.ID)
	return err
}

// ResetPassword assigns a random temporary password, forces a change at next
// login and mails the password to the user.
func (s *AuthService) ResetPassword(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	temp, err := auth.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hash
	user.NeedsPasswordChange = true
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	body := fmt.Sprintf("Hello %s,\n\nYour temporary password is: %s\nYou will be asked to change it after signing in.\n", user.Name, temp)
	if err := s.mailer.Send(ctx, user.Email, "Your temporary password", body); err != nil {
		return "", fmt.Errorf("send temporary password: %w", err)
	}
	s.logger.InfoContext(ctx, "Temporary password issued", slog.Int64("userID", user.ID))
	return temp, nil
}

// ResendVerification mails a fresh link unless the email is already verified.
func (s *AuthService) ResendVerification(ctx context.Context, id *Identity) (bool, error) {
	user, err := s.users.GetByID(ctx, id.User.ID)
	if err != nil {
		return false, err
	}
	if user.EmailVerifiedAt != nil {
		return false, nil
	}
	if err := s.sendVerification(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyEmail marks the address verified. The link is void once the email changes.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	userID, email, err := s.manager.ValidateEmailVerification(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, email) {
		return nil, auth.ErrInvalidToken
	}
	if user.EmailVerifiedAt == nil {
		now := s.now()
		user.EmailVerifiedAt = &now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *domain.User) error {
	token, err := s.manager.GenerateEmailVerification(user.ID, user.Email)
	if err != nil {
		return err
	}
	link := s.publicURL + "/api/auth/email/verify?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Hello %s,\n\nConfirm your email address by opening:\n%s\n", user.Name, link)
	return s.mailer.Send(ctx, user.Email, "Verify your email address", body)
}

// DeleteUser removes the account, its favorites and its tokens.
func (s *AuthService) DeleteUser(ctx context.Context, userID int64) error {
	movieIDs, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range movieIDs {
		s.cache.Invalidate(ctx, id)
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", userID), slog.Int("moviesUpdated", len(movieIDs)))
	return nil
}

// LookupUser finds a user by email, for the admin tooling.
func (s *AuthService) LookupUser(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}
