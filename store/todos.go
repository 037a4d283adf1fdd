package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/taskhive/go-taskhive/apperr"
	"github.com/taskhive/go-taskhive/database"
	"github.com/taskhive/go-taskhive/models"
	"github.com/taskhive/go-taskhive/utils"
)

// dueDateLayout is the date-only wire format for due dates.
const dueDateLayout = "2006-01-02"

func parseDueDate(value string) (*time.Time, error) {
	t, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "due date must be in YYYY-MM-DD format")
	}
	return &t, nil
}

// CreateTodo creates a todo under a list the acting user owns.
func CreateTodo(ctx context.Context, actingUserID string, req models.CreateTodoRequest) (*models.Todo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.ListID == "" {
		return nil, apperr.New(apperr.Validation, "title and listId are required")
	}
	if len(title) > 200 {
		return nil, apperr.New(apperr.Validation, "title cannot exceed 200 characters")
	}
	if len(req.Description) > 1000 {
		return nil, apperr.New(apperr.Validation, "description cannot exceed 1000 characters")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		var err error
		dueDate, err = parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
	}

	if _, err := getOwnedList(ctx, actingUserID, req.ListID); err != nil {
		return nil, err
	}

	id, err := utils.GenerateRandomID()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to generate ID", err)
	}

	var todo models.Todo
	err = database.DB.GetContext(ctx, &todo,
		"INSERT INTO todos (id, title, description, due_date, completed, list_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, title, description, due_date, completed, list_id, created_at, updated_at",
		id, title, req.Description, dueDate, req.Completed, req.ListID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create todo", err)
	}

	return &todo, nil
}

// ownedTodo joins a todo with its list's owner so one query settles both
// existence and ownership.
type ownedTodo struct {
	models.Todo
	OwnerID string `db:"owner_id"`
}

func getOwnedTodo(ctx context.Context, actingUserID, todoID string) (*models.Todo, error) {
	var row ownedTodo
	err := database.DB.GetContext(ctx, &row,
		"SELECT t.id, t.title, t.description, t.due_date, t.completed, t.list_id, t.created_at, t.updated_at, l.user_id AS owner_id FROM todos t JOIN todo_lists l ON l.id = t.list_id WHERE t.id = $1", todoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "todo not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch todo", err)
	}

	if row.OwnerID != actingUserID {
		return nil, apperr.New(apperr.Forbidden, "you do not own this todo")
	}

	return &row.Todo, nil
}

// GetTodosByList returns the todos of a list the acting user owns, in
// insertion order.
func GetTodosByList(ctx context.Context, actingUserID, listID string) ([]models.Todo, error) {
	if _, err := getOwnedList(ctx, actingUserID, listID); err != nil {
		return nil, err
	}

	todos := []models.Todo{}
	err := database.DB.SelectContext(ctx, &todos,
		"SELECT id, title, description, due_date, completed, list_id, created_at, updated_at FROM todos WHERE list_id = $1 ORDER BY created_at", listID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch todos", err)
	}

	return todos, nil
}

// GetTodo returns a single todo the acting user owns.
func GetTodo(ctx context.Context, actingUserID, todoID string) (*models.Todo, error) {
	return getOwnedTodo(ctx, actingUserID, todoID)
}

// UpdateTodo applies a partial update. Absent fields stay untouched; a due
// date explicitly set to "" clears the stored value.
func UpdateTodo(ctx context.Context, actingUserID, todoID string, req models.UpdateTodoRequest) (*models.Todo, error) {
	if _, err := getOwnedTodo(ctx, actingUserID, todoID); err != nil {
		return nil, err
	}

	update := squirrel.Update("todos").PlaceholderFormat(squirrel.Dollar)
	changed := false

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.New(apperr.Validation, "title is required")
		}
		if len(title) > 200 {
			return nil, apperr.New(apperr.Validation, "title cannot exceed 200 characters")
		}
		update = update.Set("title", title)
		changed = true
	}

	if req.Description != nil {
		if len(*req.Description) > 1000 {
			return nil, apperr.New(apperr.Validation, "description cannot exceed 1000 characters")
		}
		update = update.Set("description", *req.Description)
		changed = true
	}

	if req.DueDate != nil {
		if *req.DueDate == "" {
			update = update.Set("due_date", nil)
		} else {
			dueDate, err := parseDueDate(*req.DueDate)
			if err != nil {
				return nil, err
			}
			update = update.Set("due_date", dueDate)
		}
		changed = true
	}

	if req.Completed != nil {
		update = update.Set("completed", *req.Completed)
		changed = true
	}

	if !changed {
		return getOwnedTodo(ctx, actingUserID, todoID)
	}

	query, args, err := update.
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": todoID}).
		Suffix("RETURNING id, title, description, due_date, completed, list_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update todo", err)
	}

	var todo models.Todo
	err = database.DB.GetContext(ctx, &todo, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update todo", err)
	}

	return &todo, nil
}

// DeleteTodo removes a single todo the acting user owns.
func DeleteTodo(ctx context.Context, actingUserID, todoID string) error {
	if _, err := getOwnedTodo(ctx, actingUserID, todoID); err != nil {
		return err
	}

	_, err := database.DB.ExecContext(ctx, "DELETE FROM todos WHERE id = $1", todoID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete todo", err)
	}

	return nil
}

// DeleteAllTodosByList bulk-deletes every todo of a list the acting user owns
// and returns the count. Deleting from an empty list is a no-op, not an error.
func DeleteAllTodosByList(ctx context.Context, actingUserID, listID string) (int, error) {
	if _, err := getOwnedList(ctx, actingUserID, listID); err != nil {
		return 0, err
	}

	res, err := database.DB.ExecContext(ctx, "DELETE FROM todos WHERE list_id = $1", listID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to delete todos", err)
	}

	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}
