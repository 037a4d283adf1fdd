package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/go-taskhive/apperr"
	"github.com/taskhive/go-taskhive/models"
)

const (
	existsUsersSQL = `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	insertUserSQL  = `INSERT INTO users (id, username, email, password) VALUES ($1, $2, $3, $4) RETURNING created_at`
	selectUserSQL  = `SELECT id, username, email, password, created_at FROM users WHERE id = $1`
)

func userRows(id, username, email, password string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password", "created_at"}).
		AddRow(id, username, email, password, time.Now())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestRegisterUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		mock := newMockDB(t)

		_, err := RegisterUser(ctx, models.RegisterRequest{Username: "alice"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Validation))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short username", func(t *testing.T) {
		newMockDB(t)

		_, err := RegisterUser(ctx, models.RegisterRequest{Username: "al", Email: "a@b.co", Password: "secret1"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("invalid email", func(t *testing.T) {
		newMockDB(t)

		_, err := RegisterUser(ctx, models.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "secret1"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("short password", func(t *testing.T) {
		newMockDB(t)

		_, err := RegisterUser(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "12345"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("duplicate username or email", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(existsUsersSQL)).
			WithArgs("alice", "alice@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := RegisterUser(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Conflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(existsUsersSQL)).
			WithArgs("alice", "alice@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
			WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		user, err := RegisterUser(ctx, models.RegisterRequest{Username: "alice", Email: "ALICE@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.Token)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent duplicate registration", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(existsUsersSQL)).
			WithArgs("alice", "alice@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
			WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := RegisterUser(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Conflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthenticateUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()
	selectByUsername := `SELECT id, username, email, password, created_at FROM users WHERE username = $1`

	t.Run("unknown user", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectByUsername)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := AuthenticateUser(ctx, models.LoginRequest{Username: "ghost", Password: "secret1"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Auth))
		assert.Equal(t, "invalid username or password", err.Error())
	})

	t.Run("wrong password", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectByUsername)).
			WithArgs("alice").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", hashPassword(t, "secret1")))

		_, err := AuthenticateUser(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Auth))
		// Same message as the unknown-user case so usernames cannot be
		// enumerated.
		assert.Equal(t, "invalid username or password", err.Error())
	})

	t.Run("success", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectByUsername)).
			WithArgs("alice").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", hashPassword(t, "secret1")))

		user, err := AuthenticateUser(ctx, models.LoginRequest{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.NotEmpty(t, user.Token)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		username := "newname"
		_, err := UpdateUser(ctx, "missing", models.UpdateUserRequest{Username: &username})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.NotFound))
	})

	t.Run("username taken by another user", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`)).
			WithArgs("bob", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		username := "bob"
		_, err := UpdateUser(ctx, "u1", models.UpdateUserRequest{Username: &username})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Conflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("partial update touches only supplied fields", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`)).
			WithArgs("alice2", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET username = $1 WHERE id = $2 RETURNING id, username, email, created_at`)).
			WithArgs("alice2", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "created_at"}).
				AddRow("u1", "alice2", "alice@example.com", time.Now()))

		username := "alice2"
		user, err := UpdateUser(ctx, "u1", models.UpdateUserRequest{Username: &username})
		require.NoError(t, err)
		assert.Equal(t, "alice2", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields supplied", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))

		user, err := UpdateUser(ctx, "u1", models.UpdateUserRequest{})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong current password leaves digest unchanged", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", hashPassword(t, "secret1")))

		err := UpdatePassword(ctx, "u1", "wrong", "newsecret")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Auth))
		// No UPDATE was expected; the mock verifies none ran.
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short new password", func(t *testing.T) {
		newMockDB(t)

		err := UpdatePassword(ctx, "u1", "secret1", "12345")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})

	t.Run("success", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", hashPassword(t, "secret1")))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password = $1 WHERE id = $2`)).
			WithArgs(sqlmock.AnyArg(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := UpdatePassword(ctx, "u1", "secret1", "newsecret")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades todos then lists then user", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM todo_lists WHERE user_id = $1`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l1").AddRow("l2"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM todos WHERE list_id IN ($1, $2)`)).
			WithArgs("l1", "l2").
			WillReturnResult(sqlmock.NewResult(0, 5))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM todo_lists WHERE user_id = $1`)).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := DeleteUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", result.DeletedUser.ID)
		assert.Equal(t, "alice", result.DeletedUser.Username)
		assert.Equal(t, 2, result.DeletedTodoLists)
		assert.Equal(t, 5, result.DeletedTodos)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user with no lists skips the todo delete", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM todo_lists WHERE user_id = $1`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM todo_lists WHERE user_id = $1`)).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := DeleteUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, result.DeletedTodoLists)
		assert.Equal(t, 0, result.DeletedTodos)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent user", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := DeleteUser(ctx, "missing")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.NotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed child delete rolls back", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM todo_lists WHERE user_id = $1`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l1"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM todos WHERE list_id IN ($1)`)).
			WithArgs("l1").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := DeleteUser(ctx, "u1")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Internal))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates live counts", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("u1").
			WillReturnRows(userRows("u1", "alice", "alice@example.com", "digest"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM todo_lists WHERE user_id = $1`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM todos WHERE list_id IN (SELECT id FROM todo_lists WHERE user_id = $1)`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM todos WHERE list_id IN (SELECT id FROM todo_lists WHERE user_id = $1) AND completed = TRUE`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		profile, err := GetUserProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, profile.TodoListCount)
		assert.Equal(t, 7, profile.TotalTodos)
		assert.Equal(t, 3, profile.CompletedTodos)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent user", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := GetUserProfile(ctx, "missing")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.NotFound))
	})
}
