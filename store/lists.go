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

const defaultCategory = "general"

// CreateTodoList creates a list owned by the acting user.
func CreateTodoList(ctx context.Context, ownerID string, req models.CreateTodoListRequest) (*models.TodoList, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}
	if len(title) > 100 {
		return nil, apperr.New(apperr.Validation, "title cannot exceed 100 characters")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}

	if _, err := getUser(ctx, ownerID); err != nil {
		return nil, err
	}

	id, err := utils.GenerateRandomID()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to generate ID", err)
	}

	list := models.TodoList{ID: id, Title: title, Category: category, UserID: ownerID}
	err = database.DB.GetContext(ctx, &list,
		"INSERT INTO todo_lists (id, title, category, user_id) VALUES ($1, $2, $3, $4) RETURNING id, title, category, user_id, created_at, updated_at",
		id, title, category, ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create todo list", err)
	}

	return &list, nil
}

// getOwnedList fetches a list and rejects callers other than its owner.
func getOwnedList(ctx context.Context, actingUserID, listID string) (*models.TodoList, error) {
	var list models.TodoList
	err := database.DB.GetContext(ctx, &list,
		"SELECT id, title, category, user_id, created_at, updated_at FROM todo_lists WHERE id = $1", listID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "todo list not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch todo list", err)
	}

	if list.UserID != actingUserID {
		return nil, apperr.New(apperr.Forbidden, "you do not own this todo list")
	}

	return &list, nil
}

// GetTodoListsByUser returns every list owned by userID, each annotated with
// live counts. Callers may only list their own lists.
func GetTodoListsByUser(ctx context.Context, actingUserID, userID string) ([]models.TodoListWithCounts, error) {
	if actingUserID != userID {
		return nil, apperr.New(apperr.Forbidden, "you can only view your own todo lists")
	}

	if _, err := getUser(ctx, userID); err != nil {
		return nil, err
	}

	var lists []models.TodoList
	err := database.DB.SelectContext(ctx, &lists,
		"SELECT id, title, category, user_id, created_at, updated_at FROM todo_lists WHERE user_id = $1 ORDER BY created_at", userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch todo lists", err)
	}

	annotated := make([]models.TodoListWithCounts, 0, len(lists))
	for _, list := range lists {
		total, completed, err := listCounts(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		annotated = append(annotated, models.TodoListWithCounts{
			TodoList:          list,
			TodoCount:         total,
			CompletedTodos:    completed,
			CompletionPercent: CompletionPercent(completed, total),
		})
	}

	return annotated, nil
}

// GetTodoList returns a list with its full todo collection.
func GetTodoList(ctx context.Context, actingUserID, listID string) (*models.TodoListWithTodos, error) {
	list, err := getOwnedList(ctx, actingUserID, listID)
	if err != nil {
		return nil, err
	}

	todos := []models.Todo{}
	err = database.DB.SelectContext(ctx, &todos,
		"SELECT id, title, description, due_date, completed, list_id, created_at, updated_at FROM todos WHERE list_id = $1 ORDER BY created_at", listID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch todos", err)
	}

	return &models.TodoListWithTodos{
		TodoList:  *list,
		Todos:     todos,
		TodoCount: len(todos),
	}, nil
}

// UpdateTodoList applies a partial update (title, category) and returns the
// refreshed list with counts.
func UpdateTodoList(ctx context.Context, actingUserID, listID string, req models.UpdateTodoListRequest) (*models.TodoListWithCounts, error) {
	list, err := getOwnedList(ctx, actingUserID, listID)
	if err != nil {
		return nil, err
	}

	update := squirrel.Update("todo_lists").PlaceholderFormat(squirrel.Dollar)
	changed := false

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.New(apperr.Validation, "title is required")
		}
		if len(title) > 100 {
			return nil, apperr.New(apperr.Validation, "title cannot exceed 100 characters")
		}
		update = update.Set("title", title)
		changed = true
	}

	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			category = defaultCategory
		}
		update = update.Set("category", category)
		changed = true
	}

	if changed {
		query, args, err := update.
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": listID}).
			Suffix("RETURNING id, title, category, user_id, created_at, updated_at").
			ToSql()
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to update todo list", err)
		}

		err = database.DB.GetContext(ctx, list, query, args...)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to update todo list", err)
		}
	}

	total, completed, err := listCounts(ctx, listID)
	if err != nil {
		return nil, err
	}

	return &models.TodoListWithCounts{
		TodoList:          *list,
		TodoCount:         total,
		CompletedTodos:    completed,
		CompletionPercent: CompletionPercent(completed, total),
	}, nil
}

// DeleteTodoList removes a list and every todo referencing it, in one
// transaction. Returns the number of todos removed. This is the only deletion
// pathway for lists apart from the user cascade.
func DeleteTodoList(ctx context.Context, actingUserID, listID string) (int, error) {
	if _, err := getOwnedList(ctx, actingUserID, listID); err != nil {
		return 0, err
	}

	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to delete todo list", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE list_id = $1", listID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to delete todo list", err)
	}
	deletedTodos, _ := res.RowsAffected()

	_, err = tx.ExecContext(ctx, "DELETE FROM todo_lists WHERE id = $1", listID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to delete todo list", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to delete todo list", err)
	}

	return int(deletedTodos), nil
}
