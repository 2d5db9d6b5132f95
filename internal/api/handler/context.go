package handler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/api/middleware"
	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

// currentUser returns the user injected by the Authenticate middleware.
// Its absence means the route was mounted without authentication.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an integer")
	}
	return &v, nil
}

// pageQuery reads skip and limit. Range clamping happens in the services.
func pageQuery(c echo.Context) (ports.Page, error) {
	var page ports.Page
	for name, dst := range map[string]*int{"skip": &page.Skip, "limit": &page.Limit} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return ports.Page{}, domain.NewValidationError(name, "must be an integer")
		}
		*dst = v
	}
	return page, nil
}

func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domain.NewValidationError("body", "invalid JSON payload")
	}
	return c.Validate(dst)
}

// flexTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return domain.NewValidationError("date", "must be RFC 3339 or YYYY-MM-DD")
}

func (t *flexTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

type messageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
