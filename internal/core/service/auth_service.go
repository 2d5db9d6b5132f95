package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/internal/core/security"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxFullNameLen = 100

	TokenTypeBearer = "bearer"
)

var validate = validator.New()

// AuthService implements registration and login.
type AuthService struct {
	users    ports.UserRepository
	tx       ports.TxManager
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	tokenTTL time.Duration
	logger   zerolog.Logger

	// compared against when the login identifier matches no user so both
	// paths cost one bcrypt comparison
	decoyHash string
}

func NewAuthService(
	users ports.UserRepository,
	tx ports.TxManager,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = security.DefaultTokenTTL
	}
	decoy, _ := hasher.Hash("decoy-password")
	return &AuthService{
		users:     users,
		tx:        tx,
		hasher:    hasher,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		logger:    logger.Component(log, "auth_service"),
		decoyHash: decoy,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.NewValidationError("password", err.Error())
	}

	var created *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
			return domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
			return domain.ErrUsernameTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		// the unique constraints still catch a concurrent registration
		u, err := s.users.Create(ctx, &domain.User{
			Email:        input.Email,
			Username:     input.Username,
			FullName:     input.FullName,
			PasswordHash: hash,
			Role:         domain.RoleUser,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.decoyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role, security.ExtraClaims{
		Username: user.Username,
		Email:    user.Email,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.tokenTTL,
		User:        user,
	}, nil
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		user, err := s.users.FindByEmail(ctx, identifier)
		if err == nil || !errors.Is(err, domain.ErrUserNotFound) {
			return user, err
		}
	}
	return s.users.FindByUsername(ctx, identifier)
}

func validateRegistration(in ports.RegisterInput) error {
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return domain.NewValidationError("email", "must be a valid email address")
	}
	if n := len(in.Username); n < minUsernameLen || n > maxUsernameLen {
		return domain.NewValidationError("username", "must be between 3 and 50 characters")
	}
	if strings.ContainsAny(in.Username, "@ ") {
		return domain.NewValidationError("username", "must not contain spaces or '@'")
	}
	if len(in.Password) < minPasswordLen {
		return domain.NewValidationError("password", "must be at least 6 characters")
	}
	if len(in.Password) > security.MaxPasswordBytes {
		return domain.NewValidationError("password", "must be at most 72 bytes")
	}
	if n := len(in.FullName); n > maxFullNameLen {
		return domain.NewValidationError("full_name", "must be at most 100 characters")
	}
	return nil
}
