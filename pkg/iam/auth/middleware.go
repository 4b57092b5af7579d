package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

const authContextKey = "auth_context"

// AuthContext carries the authenticated caller through the request.
type AuthContext struct {
	UserID kernel.UserID
	Email  kernel.Email
	Scopes []string
}

// HasAnyScope reports whether the caller holds at least one of the scopes.
// The global scope and domain wildcards (e.g. applications:*) match any
// scope in their domain.
func (a *AuthContext) HasAnyScope(scopes ...string) bool {
	for _, have := range a.Scopes {
		if have == ScopeAll {
			return true
		}
		for _, want := range scopes {
			if have == want {
				return true
			}
			if domain, ok := strings.CutSuffix(have, ":*"); ok && strings.HasPrefix(want, domain+":") {
				return true
			}
		}
	}
	return false
}

// GetAuthContext extracts the caller identity set by Authenticate.
func GetAuthContext(c *fiber.Ctx) (*AuthContext, bool) {
	authCtx, ok := c.Locals(authContextKey).(*AuthContext)
	return authCtx, ok
}

// Middleware validates bearer tokens and enforces scopes on routes.
type Middleware struct {
	tokens *JWTService
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(tokens *JWTService) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate validates the Authorization header and stores the
// AuthContext in request locals.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return ErrUnauthorized().WithDetail("header", "missing Authorization")
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return ErrUnauthorized().WithDetail("header", "expected Bearer token")
		}

		claims, err := m.tokens.ValidateAccessToken(tokenString)
		if err != nil {
			return err
		}

		c.Locals(authContextKey, &AuthContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Scopes: claims.Scopes,
		})
		return c.Next()
	}
}

// RequireScope rejects callers missing all of the listed scopes. The
// wildcard domain scope and the global scope always pass.
func (m *Middleware) RequireScope(scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			return ErrUnauthorized()
		}

		if !authCtx.HasAnyScope(scopes...) {
			return ErrInvalidScope().WithDetail("required_scopes", scopes)
		}
		return c.Next()
	}
}
