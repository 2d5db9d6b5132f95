package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

const userColumns = `id, email, username, full_name, password_hash, role, created_at`

type UserRepository struct {
	store
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{store{db: db}}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	q := r.q(ctx)
	query := q.Rebind(`
		INSERT INTO users (email, username, full_name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	created := *user
	err := q.QueryRowxContext(ctx, query,
		user.Email, user.Username, user.FullName, user.PasswordHash, string(user.Role), user.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		if column, ok := uniqueViolation(err); ok {
			switch column {
			case "email":
				return nil, domain.ErrEmailTaken
			case "username":
				return nil, domain.ErrUsernameTaken
			default:
				return nil, domain.ErrDuplicateIdentity
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	q := r.q(ctx)
	var user domain.User
	if err := q.GetContext(ctx, &user, q.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, page ports.Page) ([]*domain.User, error) {
	q := r.q(ctx)
	window, args := limitOffset(page, nil)
	users := []*domain.User{}
	if err := q.SelectContext(ctx, &users, q.Rebind(`SELECT `+userColumns+` FROM users ORDER BY id`+window), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Delete removes the user. Projects, tasks, forecasts and simulations go with
// it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	q := r.q(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetRole changes the role of the user with the given username.
func (r *UserRepository) SetRole(ctx context.Context, username string, role domain.Role) error {
	q := r.q(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE users SET role = ? WHERE username = ?`), string(role), username)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
