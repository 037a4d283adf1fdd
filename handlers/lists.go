package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-taskhive/models"
	"github.com/taskhive/go-taskhive/store"
)

// HandleCreateTodoList creates a list owned by the acting user.
func HandleCreateTodoList(c *fiber.Ctx) error {
	var req models.CreateTodoListRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	list, err := store.CreateTodoList(c.Context(), actingUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 201, list, "todo list created successfully")
}

// HandleGetUserTodoLists returns the acting user's lists with live counts.
func HandleGetUserTodoLists(c *fiber.Ctx) error {
	lists, err := store.GetTodoListsByUser(c.Context(), actingUserID(c), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, lists, "")
}

// HandleGetTodoList returns a list detail with its todos.
func HandleGetTodoList(c *fiber.Ctx) error {
	list, err := store.GetTodoList(c.Context(), actingUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, list, "")
}

// HandleUpdateTodoList applies a partial update to a list.
func HandleUpdateTodoList(c *fiber.Ctx) error {
	var req models.UpdateTodoListRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	list, err := store.UpdateTodoList(c.Context(), actingUserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, list, "todo list updated successfully")
}

// HandleDeleteTodoList deletes a list and cascades to its todos.
func HandleDeleteTodoList(c *fiber.Ctx) error {
	deleted, err := store.DeleteTodoList(c.Context(), actingUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, fiber.Map{"deletedTodos": deleted}, "todo list deleted successfully")
}
