package sqlstore

import (
	"errors"
	"math"
	"strings"

	"github.com/lib/pq"

	"github.com/taskpilot/taskpilot/internal/core/ports"
)

// conditions accumulates WHERE clauses and their arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, arg any) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, arg)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// limitOffset appends the page window. A zero limit means no limit.
func limitOffset(page ports.Page, args []any) (string, []any) {
	limit := page.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}
	skip := page.Skip
	if skip < 0 {
		skip = 0
	}
	return " LIMIT ? OFFSET ?", append(args, limit, skip)
}

// uniqueViolation reports the column of a violated unique constraint, or ""
// when err is not one.
func uniqueViolation(err error) (column string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return "", false
		}
		return columnFromConstraint(pqErr.Constraint + " " + pqErr.Detail), true
	}
	// modernc.org/sqlite: "constraint failed: UNIQUE constraint failed: users.email (2067)"
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		return columnFromConstraint(msg[i:]), true
	}
	return "", false
}

func columnFromConstraint(s string) string {
	switch {
	case strings.Contains(s, "email"):
		return "email"
	case strings.Contains(s, "username"):
		return "username"
	default:
		return ""
	}
}
