package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/go-taskhive/apperr"
	"github.com/taskhive/go-taskhive/database"
	"github.com/taskhive/go-taskhive/models"
	"github.com/taskhive/go-taskhive/utils"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// RegisterUser creates a new account and issues a session token.
func RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.UserPublicView, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || email == "" || req.Password == "" {
		return nil, apperr.New(apperr.Validation, "username, email, and password are required")
	}
	if len(username) < 3 {
		return nil, apperr.New(apperr.Validation, "username must be at least 3 characters long")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.New(apperr.Validation, "please use a valid email address")
	}
	if len(req.Password) < 6 {
		return nil, apperr.New(apperr.Validation, "password must be at least 6 characters long")
	}

	var exists bool
	err := database.DB.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)", username, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to register user", err)
	}
	if exists {
		return nil, apperr.New(apperr.Conflict, "user with that username or email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not hash password", err)
	}

	id, err := utils.GenerateRandomID()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to generate ID", err)
	}

	var createdAt time.Time
	err = database.DB.GetContext(ctx, &createdAt,
		"INSERT INTO users (id, username, email, password) VALUES ($1, $2, $3, $4) RETURNING created_at",
		id, username, email, string(hashed))
	if err != nil {
		// Two registrations can pass the EXISTS check at once; the unique
		// constraint settles it.
		if isUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "user with that username or email already exists")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to register user", err)
	}

	token, err := utils.GenerateToken(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}

	return &models.UserPublicView{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: createdAt,
		Token:     token,
	}, nil
}

// AuthenticateUser verifies credentials and issues a session token. An unknown
// username and a wrong password return the same message so usernames cannot be
// enumerated.
func AuthenticateUser(ctx context.Context, req models.LoginRequest) (*models.UserPublicView, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperr.New(apperr.Validation, "username and password are required")
	}

	var user models.User
	err := database.DB.GetContext(ctx, &user,
		"SELECT id, username, email, password, created_at FROM users WHERE username = $1", req.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.Auth, "invalid username or password")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to login", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperr.New(apperr.Auth, "invalid username or password")
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}

	return &models.UserPublicView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Token:     token,
	}, nil
}

func getUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := database.DB.GetContext(ctx, &user,
		"SELECT id, username, email, password, created_at FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch user", err)
	}
	return &user, nil
}

// GetUserByID returns the public view of a user plus live counts.
func GetUserByID(ctx context.Context, id string) (*models.UserWithStats, error) {
	user, err := getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	lists, todos, _, err := userCounts(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.UserWithStats{
		UserPublicView: models.UserPublicView{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		Stats: models.UserStats{TodoListCount: lists, TodoCount: todos},
	}, nil
}

// GetUserProfile returns the acting user's profile with full aggregates.
func GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lists, todos, completed, err := userCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserProfile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		CreatedAt:      user.CreatedAt,
		TodoListCount:  lists,
		TotalTodos:     todos,
		CompletedTodos: completed,
	}, nil
}

// UpdateUser applies a partial profile update. Changed usernames and emails are
// re-checked for uniqueness against all other users.
func UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.UserPublicView, error) {
	user, err := getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	update := squirrel.Update("users").PlaceholderFormat(squirrel.Dollar)
	changed := false

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < 3 {
			return nil, apperr.New(apperr.Validation, "username must be at least 3 characters long")
		}
		if username != user.Username {
			taken, err := otherUserExists(ctx, "username", username, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.New(apperr.Conflict, "username already exists")
			}
		}
		update = update.Set("username", username)
		changed = true
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailPattern.MatchString(email) {
			return nil, apperr.New(apperr.Validation, "please use a valid email address")
		}
		if email != user.Email {
			taken, err := otherUserExists(ctx, "email", email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.New(apperr.Conflict, "email already exists")
			}
		}
		update = update.Set("email", email)
		changed = true
	}

	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, apperr.New(apperr.Validation, "password must be at least 6 characters long")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "could not hash password", err)
		}
		update = update.Set("password", string(hashed))
		changed = true
	}

	if !changed {
		return &models.UserPublicView{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		}, nil
	}

	query, args, err := update.
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, username, email, created_at").
		ToSql()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update user", err)
	}

	var updated models.User
	err = database.DB.GetContext(ctx, &updated, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "username or email already exists")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to update user", err)
	}

	return &models.UserPublicView{
		ID:        updated.ID,
		Username:  updated.Username,
		Email:     updated.Email,
		CreatedAt: updated.CreatedAt,
	}, nil
}

func otherUserExists(ctx context.Context, column, value, excludeID string) (bool, error) {
	var exists bool
	err := database.DB.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE "+column+" = $1 AND id <> $2)", value, excludeID)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to update user", err)
	}
	return exists, nil
}

// UpdatePassword replaces the stored digest after verifying the current
// password.
func UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperr.New(apperr.Validation, "current password and new password are required")
	}
	if len(newPassword) < 6 {
		return apperr.New(apperr.Validation, "new password must be at least 6 characters long")
	}

	user, err := getUser(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
		return apperr.New(apperr.Auth, "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "could not hash password", err)
	}

	_, err = database.DB.ExecContext(ctx,
		"UPDATE users SET password = $1 WHERE id = $2", string(hashed), userID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update password", err)
	}

	return nil
}

// DeleteUser removes an account and everything it owns: first the todos of the
// user's lists, then the lists, then the user, all in one transaction. This is
// the only deletion pathway for users, so the cascade lives here and nowhere
// else.
func DeleteUser(ctx context.Context, id string) (*models.DeleteUserResult, error) {
	user, err := getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}
	defer tx.Rollback()

	var listIDs []string
	err = tx.SelectContext(ctx, &listIDs,
		"SELECT id FROM todo_lists WHERE user_id = $1", id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}

	deletedTodos := 0
	if len(listIDs) > 0 {
		query, args, err := sqlx.In("DELETE FROM todos WHERE list_id IN (?)", listIDs)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
		}
		n, _ := res.RowsAffected()
		deletedTodos = int(n)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM todo_lists WHERE user_id = $1", id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}
	deletedLists, _ := res.RowsAffected()

	_, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}

	return &models.DeleteUserResult{
		DeletedUser:      models.DeletedUser{ID: user.ID, Username: user.Username},
		DeletedTodoLists: int(deletedLists),
		DeletedTodos:     deletedTodos,
	}, nil
}
