package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

func runAdmin(t *testing.T, auth Authenticator, header string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, RequireAdmin(auth)(next)(c)
}

func TestRequireAdmin_Allows(t *testing.T) {
	auth := &stubAuthenticator{user: &domain.User{ID: 1, Role: domain.RoleAdmin}}

	called := false
	rec, err := runAdmin(t, auth, "Bearer root", func(c echo.Context) error {
		called = true
		if user, ok := CurrentUser(c); !ok || user.ID != 1 {
			t.Fatalf("admin not set in context: %+v", user)
		}
		return c.NoContent(http.StatusOK)
	})

	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdmin_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		auth   *stubAuthenticator
		want   error
	}{
		{"plain user", "Bearer carol", &stubAuthenticator{user: &domain.User{ID: 2, Role: domain.RoleUser}}, domain.ErrForbidden},
		{"missing header", "", &stubAuthenticator{}, domain.ErrUnauthorized},
		{"deleted admin", "Bearer gone", &stubAuthenticator{err: domain.ErrUnauthorized}, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runAdmin(t, tt.auth, tt.header, func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
