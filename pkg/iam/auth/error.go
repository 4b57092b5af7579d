package auth

import (
	"net/http"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("AUTH")

// Error codes
var (
	CodeUnauthorized  = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Missing or invalid credentials")
	CodeInvalidToken  = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Token is invalid or expired")
	CodeInvalidScope  = ErrRegistry.Register("INVALID_SCOPE", errx.TypeAuthorization, http.StatusForbidden, "Insufficient scope for this operation")
	CodeTokenGenerate = ErrRegistry.Register("TOKEN_GENERATE", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate token")
)

// Helper functions
func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrInvalidToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidToken)
}

func ErrInvalidScope() *errx.Error {
	return ErrRegistry.New(CodeInvalidScope)
}

func ErrTokenGenerate() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerate)
}
