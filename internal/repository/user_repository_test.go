package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"task-tracker/config"
	"task-tracker/internal/model"
	"task-tracker/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "uuid", "username", "password_hash", "email", "phone", "created_at"}

func newUserRepository(t *testing.T) (*repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewUserRepository(&config.Database{DB: sqlx.NewDb(db, "sqlmock")}), mock
}

func TestUserRepository_FindByLogin(t *testing.T) {
	repo, mock := newUserRepository(t)
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "123e4567-e89b-12d3-a456-426614174000", "alice", "$argon2id$...", "enc-email", "enc-phone", createdAt))

	user, err := repo.FindByLogin(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "$argon2id$...", user.PasswordHash)
	assert.Equal(t, "enc-email", user.Email)
	assert.Equal(t, createdAt, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByLoginNotFound(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDDatabaseError(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	user, err := repo.FindByID(context.Background(), 7)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrUserNotFound)
	assert.Nil(t, user)
}

func TestUserRepository_Scopes(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectQuery(`SELECT r.name\s+FROM rules r\s+JOIN user_rules ur`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("tasks:read").AddRow("tasks:write"))

	scopes, err := repo.Scopes(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks:read", "tasks:write"}, scopes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ScopesEmpty(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectQuery(`SELECT r.name`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	scopes, err := repo.Scopes(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, scopes)
	assert.Empty(t, scopes)
}

func TestUserRepository_CreateUser(t *testing.T) {
	repo, mock := newUserRepository(t)
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "hash", "enc-email", "enc-phone").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "username", "created_at"}).
			AddRow(42, "123e4567-e89b-12d3-a456-426614174000", "alice", createdAt))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM rules WHERE name = ANY($1)`)).
		WithArgs(pq.Array([]string{"tasks:read", "tasks:write"})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec(`INSERT INTO user_rules`).WithArgs(int64(42), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_rules`).WithArgs(int64(42), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.CreateUser(context.Background(), &model.NewUser{
		Username:     "alice",
		PasswordHash: "hash",
		Email:        "enc-email",
		Phone:        "enc-phone",
		Scopes:       []string{"tasks:read", "tasks:write", "tasks:read"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "enc-email", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUserDuplicate(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	user, err := repo.CreateUser(context.Background(), &model.NewUser{Username: "alice", PasswordHash: "hash"})
	assert.ErrorIs(t, err, repository.ErrUserExists)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUserUnknownScope(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "username", "created_at"}).
			AddRow(42, "123e4567-e89b-12d3-a456-426614174000", "alice", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM rules WHERE name = ANY($1)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	user, err := repo.CreateUser(context.Background(), &model.NewUser{
		Username:     "alice",
		PasswordHash: "hash",
		Scopes:       []string{"tasks:read", "tasks:destroy"},
	})
	assert.ErrorIs(t, err, repository.ErrUnknownScope)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	repo, mock := newUserRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = $2 WHERE id = $1`)).
		WithArgs(int64(42), "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = $2 WHERE id = $1`)).
		WithArgs(int64(7), "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePassword(context.Background(), 42, "new-hash"))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 7, "new-hash"), repository.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
