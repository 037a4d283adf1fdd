package store

import (
	"context"
	"math"

	"github.com/taskhive/go-taskhive/apperr"
	"github.com/taskhive/go-taskhive/database"
)

// Aggregates are counting queries re-run on every read. Nothing here is
// cached, so the numbers always reflect current store state.

// listCounts returns the total and completed todo counts for one list.
func listCounts(ctx context.Context, listID string) (total, completed int, err error) {
	err = database.DB.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM todos WHERE list_id = $1", listID)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.Internal, "failed to count todos", err)
	}

	err = database.DB.GetContext(ctx, &completed,
		"SELECT COUNT(*) FROM todos WHERE list_id = $1 AND completed = TRUE", listID)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.Internal, "failed to count todos", err)
	}

	return total, completed, nil
}

// userCounts returns the list count, total todo count and completed todo count
// across every list the user owns.
func userCounts(ctx context.Context, userID string) (lists, todos, completed int, err error) {
	err = database.DB.GetContext(ctx, &lists,
		"SELECT COUNT(*) FROM todo_lists WHERE user_id = $1", userID)
	if err != nil {
		return 0, 0, 0, apperr.Wrap(apperr.Internal, "failed to count todo lists", err)
	}

	err = database.DB.GetContext(ctx, &todos,
		"SELECT COUNT(*) FROM todos WHERE list_id IN (SELECT id FROM todo_lists WHERE user_id = $1)", userID)
	if err != nil {
		return 0, 0, 0, apperr.Wrap(apperr.Internal, "failed to count todos", err)
	}

	err = database.DB.GetContext(ctx, &completed,
		"SELECT COUNT(*) FROM todos WHERE list_id IN (SELECT id FROM todo_lists WHERE user_id = $1) AND completed = TRUE", userID)
	if err != nil {
		return 0, 0, 0, apperr.Wrap(apperr.Internal, "failed to count todos", err)
	}

	return lists, todos, completed, nil
}

// CompletionPercent is round(completed/total*100). A list with no todos is 0%,
// never a division by zero.
func CompletionPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
