package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// Config holds token settings.
type Config struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	Issuer         string
}

// DefaultConfig returns sane development defaults. SecretKey must be
// overridden from the environment.
func DefaultConfig() Config {
	return Config{
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "uptick-talent",
	}
}

// TokenClaims is the decoded payload of an access token.
type TokenClaims struct {
	UserID    kernel.UserID
	Email     kernel.Email
	Scopes    []string
	ExpiresAt time.Time
}

// JWTService issues and validates signed access tokens.
type JWTService struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
}

// NewJWTService creates a token service from config.
func NewJWTService(cfg Config) *JWTService {
	return &JWTService{
		secretKey: []byte(cfg.SecretKey),
		tokenTTL:  cfg.AccessTokenTTL,
		issuer:    cfg.Issuer,
	}
}

type accessClaims struct {
	Email  string   `json:"email"`
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for the given user and scopes.
func (s *JWTService) GenerateAccessToken(userID kernel.UserID, email kernel.Email, scopes []string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email:  email.String(),
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", ErrTokenGenerate().WithCause(err)
	}
	return signed, nil
}

// ValidateAccessToken parses and verifies a token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken().WithDetail("alg", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken().WithCause(err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken()
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &TokenClaims{
		UserID:    kernel.UserID(claims.Subject),
		Email:     kernel.Email(claims.Email),
		Scopes:    claims.Scopes,
		ExpiresAt: expiresAt,
	}, nil
}
