package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// Authenticator is the part of the access guard the middleware needs.
type Authenticator interface {
	RequireAuthenticated(ctx context.Context, token string) (*domain.User, error)
	RequireAdmin(ctx context.Context, token string) (*domain.User, error)
}

type checkFunc func(ctx context.Context, token string) (*domain.User, error)

// Authenticate verifies the bearer token and stores the resolved user in the
// context.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return withUser(auth.RequireAuthenticated)
}

func withUser(check checkFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			user, err := check(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", domain.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// CurrentUser returns the user stored by Authenticate or RequireAdmin.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserKey).(*domain.User)
	return user, ok && user != nil
}
