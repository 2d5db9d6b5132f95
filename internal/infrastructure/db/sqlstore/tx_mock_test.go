package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, DriverPostgres), mock
}

func TestApplySchema_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS projects")).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := ApplySchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_CommitFailure(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewTxManager(db, zerolog.Nop())

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	err := m.RunInTx(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RepositoriesUseTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewTxManager(db, zerolog.Nop())
	projects := NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := m.RunInTx(context.Background(), func(ctx context.Context) error {
		return projects.Delete(ctx, 7)
	})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_PostgresUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := users.Create(context.Background(), &domain.User{Email: "a@b.c", Username: "dup", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		column string
		ok     bool
	}{
		{"pq email", &pq.Error{Code: "23505", Constraint: "users_email_key"}, "email", true},
		{"pq other code", &pq.Error{Code: "23503"}, "", false},
		{"sqlite username", errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"), "username", true},
		{"unrelated", errors.New("disk I/O error"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column, ok := uniqueViolation(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.column, column)
		})
	}
}
