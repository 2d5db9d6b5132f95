package middleware

import (
	"github.com/labstack/echo/v4"
)

// RequireAdmin authenticates the bearer token and lets the request through
// only for admins. It replaces Authenticate on admin routes.
func RequireAdmin(auth Authenticator) echo.MiddlewareFunc {
	return withUser(auth.RequireAdmin)
}
