package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "incorrect username, email or password"},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized, "could not validate credentials"},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized, "token has expired"},
		{"deleted subject", fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized), http.StatusUnauthorized, "could not validate credentials"},
		{"forbidden wrapped", fmt.Errorf("%w: task/3", domain.ErrForbidden), http.StatusForbidden, "not enough permissions"},
		{"email taken", domain.ErrEmailTaken, http.StatusBadRequest, "email already registered"},
		{"username taken", domain.ErrUsernameTaken, http.StatusBadRequest, "username already taken"},
		{"validation", domain.NewValidationError("progress", "must be between 0 and 100"), http.StatusBadRequest, "progress: must be between 0 and 100"},
		{"admin lookup", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"project missing", domain.ErrProjectNotFound, http.StatusNotFound, "project not found"},
		{"task missing", fmt.Errorf("load: %w", domain.ErrTaskNotFound), http.StatusNotFound, "task not found"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "rate limit exceeded"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tasks/3", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, body.Error)
			}

			challenge := rec.Header().Get("WWW-Authenticate")
			if tt.wantCode == http.StatusUnauthorized && challenge != "Bearer" {
				t.Errorf("expected WWW-Authenticate: Bearer on 401, got %q", challenge)
			}
			if tt.wantCode != http.StatusUnauthorized && challenge != "" {
				t.Errorf("unexpected WWW-Authenticate header on %d", tt.wantCode)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}
