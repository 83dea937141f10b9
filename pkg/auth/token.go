// pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer               = "movie-catalog"
	accessAudience       = "api"
	verificationAudience = "email-verification"
)

// ErrInvalidToken covers every parse, signature, expiry and audience failure.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager issues and validates the HS256 JWTs used by the API.
type TokenManager interface {
	// Generate signs an access token for userID whose jti is tokenID.
	Generate(userID int64, tokenID string) (string, time.Time, error)
	Validate(tokenString string) (*Claims, error)
	// GenerateEmailVerification signs a link token bound to the current email.
	GenerateEmailVerification(userID int64, email string) (string, error)
	ValidateEmailVerification(tokenString string) (userID int64, email string, err error)
}

// Claims is the access token payload. RegisteredClaims.ID carries the jti.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type verificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwtManager struct {
	secretKey       []byte
	tokenDuration   time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewTokenManager creates a TokenManager. tokenDuration bounds access tokens;
// verification links live for 60 minutes.
func NewTokenManager(secretKey string, tokenDuration time.Duration) (TokenManager, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if tokenDuration <= 0 {
		return nil, fmt.Errorf("token duration must be positive")
	}
	return &jwtManager{
		secretKey:       []byte(secretKey),
		tokenDuration:   tokenDuration,
		verificationTTL: 60 * time.Minute,
		now:             time.Now,
	}, nil
}

func (m *jwtManager) Generate(userID int64, tokenID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.tokenDuration)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{accessAudience},
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *jwtManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, accessAudience); err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *jwtManager) GenerateEmailVerification(userID int64, email string) (string, error) {
	now := m.now()
	claims := &verificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{verificationAudience},
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.verificationTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return signed, nil
}

func (m *jwtManager) ValidateEmailVerification(tokenString string) (int64, string, error) {
	claims := &verificationClaims{}
	if err := m.parse(tokenString, claims, verificationAudience); err != nil {
		return 0, "", err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, "", ErrInvalidToken
	}
	return userID, claims.Email, nil
}

func (m *jwtManager) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
