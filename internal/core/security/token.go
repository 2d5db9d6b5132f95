package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

// DefaultTokenTTL applies when neither the config nor the caller sets one.
const DefaultTokenTTL = 30 * time.Minute

// TokenConfig is loaded once at startup and never mutated afterwards.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// Claims is the signed token payload. The subject holds the user id as a
// decimal string.
type Claims struct {
	jwt.RegisteredClaims
	Role     domain.Role `json:"role"`
	Username string      `json:"username,omitempty"`
	Email    string      `json:"email,omitempty"`
}

// UserID returns the subject parsed back into a user id.
func (c *Claims) UserID() (int64, error) {
	if c.Subject == "" {
		return 0, domain.ErrInvalidToken
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

// ExtraClaims are informational fields copied into the token. They are never
// used for authorization.
type ExtraClaims struct {
	Username string
	Email    string
}

// TokenService issues and verifies signed bearer tokens.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs a token for subject. A zero ttl uses the configured default.
func (s *TokenService) Issue(subject int64, role domain.Role, extra ExtraClaims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	issuedAt := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Role:     role,
		Username: extra.Username,
		Email:    extra.Email,
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the payload. It fails with
// domain.ErrExpiredToken once now reaches the expiry and with
// domain.ErrInvalidToken for every other defect.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
