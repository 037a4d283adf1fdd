package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-taskhive/models"
	"github.com/taskhive/go-taskhive/store"
)

// HandleCreateTodo creates a todo under a list the acting user owns.
func HandleCreateTodo(c *fiber.Ctx) error {
	var req models.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	todo, err := store.CreateTodo(c.Context(), actingUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 201, todo, "todo created successfully")
}

// HandleGetListTodos returns the todos of one list in insertion order.
func HandleGetListTodos(c *fiber.Ctx) error {
	todos, err := store.GetTodosByList(c.Context(), actingUserID(c), c.Params("listId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, todos, "")
}

// HandleGetTodo returns a single todo.
func HandleGetTodo(c *fiber.Ctx) error {
	todo, err := store.GetTodo(c.Context(), actingUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, todo, "")
}

// HandleUpdateTodo applies a partial update; only fields present in the body
// are touched.
func HandleUpdateTodo(c *fiber.Ctx) error {
	var req models.UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	todo, err := store.UpdateTodo(c.Context(), actingUserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, todo, "todo updated successfully")
}

// HandleDeleteTodo removes a single todo.
func HandleDeleteTodo(c *fiber.Ctx) error {
	err := store.DeleteTodo(c.Context(), actingUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, nil, "todo deleted successfully")
}

// HandleDeleteListTodos bulk-deletes every todo of one list.
func HandleDeleteListTodos(c *fiber.Ctx) error {
	deleted, err := store.DeleteAllTodosByList(c.Context(), actingUserID(c), c.Params("listId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, fiber.Map{"deletedCount": deleted}, "todos deleted successfully")
}
