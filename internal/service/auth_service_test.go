package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	resp := env.register(t, "Alice@Example.com")
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.Token)
	assert.Nil(t, resp.User.EmailVerifiedAt)

	id, err := env.authSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id.User.ID)

	row, err := env.tokens.Get(ctx, id.TokenID)
	require.NoError(t, err)
	assert.NotNil(t, row.LastUsedAt)

	_, err = env.authSvc.Register(ctx, domain.RegisterRequest{
		Name: "Again", Email: "alice@example.com", Password: "password123", PasswordConfirmation: "password123",
	})
	assert.ErrorIs(t, err, store.ErrUserAlreadyExists)

	_, err = env.authSvc.Register(ctx, domain.RegisterRequest{
		Name: "Short", Email: "short@example.com", Password: "abc", PasswordConfirmation: "abd",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "password_confirmation")
}

func TestAuthService_AuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	resp := env.register(t, "bob@example.com")

	_, err := env.authSvc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// A correctly signed token without a stored row is rejected.
	orphan, _, err := env.tm.Generate(resp.User.ID, "not-stored")
	require.NoError(t, err)
	_, err = env.authSvc.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, env.authSvc.DeleteUser(ctx, resp.User.ID))
	_, err = env.authSvc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_LoginRevokesPreviousTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	first := env.register(t, "carol@example.com")

	_, err := env.authSvc.Login(ctx, domain.LoginRequest{Email: "carol@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.authSvc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	second, err := env.authSvc.Login(ctx, domain.LoginRequest{Email: "CAROL@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.False(t, second.NeedsPasswordChange)

	_, err = env.authSvc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	id, err := env.authSvc.Authenticate(ctx, second.Token)
	require.NoError(t, err)

	require.NoError(t, env.authSvc.Logout(ctx, id))
	_, err = env.authSvc.Authenticate(ctx, second.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_ForgotAndChangePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "dave@example.com")

	require.NoError(t, env.authSvc.ForgotPassword(ctx, domain.ForgotPasswordRequest{Email: "unknown@example.com"}))
	mailsBefore := len(env.mailer.sent)

	require.NoError(t, env.authSvc.ForgotPassword(ctx, domain.ForgotPasswordRequest{Email: "dave@example.com"}))
	require.Len(t, env.mailer.sent, mailsBefore+1)
	mail := env.mailer.last()
	assert.Equal(t, "dave@example.com", mail.To)
	temp := temporaryPasswordFrom(t, mail.Body)

	login, err := env.authSvc.Login(ctx, domain.LoginRequest{Email: "dave@example.com", Password: temp})
	require.NoError(t, err)
	assert.True(t, login.NeedsPasswordChange)

	id, err := env.authSvc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.True(t, id.User.NeedsPasswordChange)

	_, err = env.authSvc.ChangePassword(ctx, id, domain.ChangePasswordRequest{
		CurrentPassword: "not-it", NewPassword: "brand-new-pass", NewPasswordConfirmation: "brand-new-pass",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	other, err := env.authSvc.issue(ctx, id.User.ID)
	require.NoError(t, err)

	user, err := env.authSvc.ChangePassword(ctx, id, domain.ChangePasswordRequest{
		CurrentPassword: temp, NewPassword: "brand-new-pass", NewPasswordConfirmation: "brand-new-pass",
	})
	require.NoError(t, err)
	assert.False(t, user.NeedsPasswordChange)

	_, err = env.authSvc.Authenticate(ctx, login.Token)
	assert.NoError(t, err, "the current session survives")
	_, err = env.authSvc.Authenticate(ctx, other)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "other sessions are revoked")
}

func TestAuthService_EmailVerification(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	resp := env.register(t, "erin@example.com")

	mail := env.mailer.last()
	assert.Equal(t, "erin@example.com", mail.To)
	token := verificationTokenFrom(t, mail.Body)

	user, err := env.authSvc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerifiedAt)

	id, err := env.authSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	sent, err := env.authSvc.ResendVerification(ctx, id)
	require.NoError(t, err)
	assert.False(t, sent, "already verified")

	updated, err := env.authSvc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Email: ptr("erin.new@example.com")})
	require.NoError(t, err)
	assert.Nil(t, updated.EmailVerifiedAt)

	// The old link is bound to the old address.
	_, err = env.authSvc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	newToken := verificationTokenFrom(t, env.mailer.last().Body)
	user, err = env.authSvc.VerifyEmail(ctx, newToken)
	require.NoError(t, err)
	assert.NotNil(t, user.EmailVerifiedAt)
}

func TestAuthService_UpdateProfileEmailConflict(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "taken@example.com")
	resp := env.register(t, "frank@example.com")
	id, err := env.authSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	_, err = env.authSvc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Email: ptr("TAKEN@example.com")})
	assert.ErrorIs(t, err, store.ErrUserAlreadyExists)

	user, err := env.authSvc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Name: ptr("Frank"), Email: ptr("frank@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Frank", user.Name)
}

func temporaryPasswordFrom(t *testing.T, body string) string {
	t.Helper()
	const marker = "temporary password is: "
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, "mail body: %s", body)
	rest := body[i+len(marker):]
	temp, _, _ := strings.Cut(rest, "\n")
	require.Len(t, temp, temporaryPasswordLength)
	return temp
}

func verificationTokenFrom(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "http://catalog.test/api/auth/email/verify?")
	require.GreaterOrEqual(t, i, 0, "mail body: %s", body)
	link, _, _ := strings.Cut(body[i:], "\n")
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func TestAuthService_DeleteUserInvalidatesFavoritedMovies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gone := env.register(t, "gone@example.com")
	stays := env.register(t, "stays@example.com")
	m := env.createMovie(t, domain.CreateMovieRequest{Title: "Heat", Year: 1995})

	_, _, err := env.favSvc.Add(ctx, gone.User.ID, m.ID)
	require.NoError(t, err)
	_, _, err = env.favSvc.Add(ctx, stays.User.ID, m.ID)
	require.NoError(t, err)

	cached, err := env.movieSvc.Get(ctx, m.ID, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, cached.FavoriteCount)

	require.NoError(t, env.authSvc.DeleteUser(ctx, gone.User.ID))
	assert.Contains(t, env.cache.invalidated, m.ID)

	got, err := env.movieSvc.Get(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.FavoriteCount)
}

func TestAuthService_RegisterRejectsBlankName(t *testing.T) {
	_, err := newTestEnv(t).authSvc.Register(context.Background(), domain.RegisterRequest{
		Name: "  ", Email: "blank@example.com", Password: "password123", PasswordConfirmation: "password123",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"name": "The name field is required."}, verr.Fields)
}
