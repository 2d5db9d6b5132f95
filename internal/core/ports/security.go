package ports

import (
	"time"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/security"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(subject int64, role domain.Role, extra security.ExtraClaims, ttl time.Duration) (string, error)
	Verify(token string) (*security.Claims, error)
}
