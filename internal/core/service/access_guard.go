package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/internal/core/security"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

// IdentityResolver turns verified token claims into the current user record.
type IdentityResolver struct {
	users ports.UserRepository
}

func NewIdentityResolver(users ports.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve loads the subject of claims. A subject that no longer exists is
// reported as domain.ErrUserNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, claims *security.Claims) (*domain.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AccessGuard authenticates tokens and enforces resource ownership.
type AccessGuard struct {
	tokens   ports.TokenService
	identity *IdentityResolver
	owners   ports.OwnerResolver
	metrics  ports.ServiceMetrics
	logger   zerolog.Logger
}

// NewAccessGuard builds the guard. A nil metrics disables counting.
func NewAccessGuard(tokens ports.TokenService, identity *IdentityResolver, owners ports.OwnerResolver, metrics ports.ServiceMetrics, log zerolog.Logger) *AccessGuard {
	return &AccessGuard{
		tokens:   tokens,
		identity: identity,
		owners:   owners,
		metrics:  metricsOrNop(metrics),
		logger:   logger.Component(log, "access_guard"),
	}
}

// RequireAuthenticated verifies token and loads its subject. A subject that
// was deleted after the token was issued fails with domain.ErrUnauthorized.
func (g *AccessGuard) RequireAuthenticated(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := g.identity.Resolve(ctx, claims)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			g.logger.Debug().Str("subject", claims.Subject).Msg("token subject no longer exists")
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (g *AccessGuard) RequireAdmin(ctx context.Context, token string) (*domain.User, error) {
	user, err := g.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		g.metrics.AccessDenied("admin")
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// AuthorizeResourceAccess fails with the resource's not-found error when it
// does not exist, and with domain.ErrForbidden when it exists but actor is
// neither its owner nor an admin.
func (g *AccessGuard) AuthorizeResourceAccess(ctx context.Context, actor *domain.User, ref domain.ResourceRef) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	ownerID, err := g.owners.ResolveOwner(ctx, ref)
	if err != nil {
		return err
	}
	if actor.Role.IsAdmin() || ownerID == actor.ID {
		return nil
	}
	g.metrics.AccessDenied(string(ref.Kind))
	g.logger.Info().
		Int64("user_id", actor.ID).
		Str("resource", ref.String()).
		Msg("resource access denied")
	return fmt.Errorf("%w: %s", domain.ErrForbidden, ref)
}
