package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-taskhive/models"
	"github.com/taskhive/go-taskhive/store"
)

// RegisterHandler creates a new account and returns it with a session token.
func RegisterHandler(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	user, err := store.RegisterUser(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 201, user, "user registered successfully")
}

// LoginHandler authenticates and returns the user with a session token.
func LoginHandler(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	user, err := store.AuthenticateUser(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, user, "login successful")
}

// LogoutHandler is a stateless acknowledgement; the client discards its token
// and the server holds no session to invalidate.
func LogoutHandler(c *fiber.Ctx) error {
	return respond(c, 200, nil, "logged out successfully")
}

// HandleGetProfile returns the acting user's profile with aggregates.
func HandleGetProfile(c *fiber.Ctx) error {
	profile, err := store.GetUserProfile(c.Context(), actingUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, profile, "")
}

// HandleGetUser returns a user's public view with stats.
func HandleGetUser(c *fiber.Ctx) error {
	user, err := store.GetUserByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, user, "")
}

// HandleUpdateUser applies a partial profile update to the acting user's own
// account.
func HandleUpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id != actingUserID(c) {
		return respond(c, 403, nil, "you can only modify your own account")
	}

	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	user, err := store.UpdateUser(c.Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, user, "user updated successfully")
}

// HandleUpdatePassword replaces the acting user's password digest.
func HandleUpdatePassword(c *fiber.Ctx) error {
	id := c.Params("id")
	if id != actingUserID(c) {
		return respond(c, 403, nil, "you can only modify your own account")
	}

	var req models.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, 400, nil, "invalid request body")
	}

	err := store.UpdatePassword(c.Context(), id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, nil, "password updated successfully")
}

// HandleDeleteUser deletes the acting user's account and cascades to its lists
// and todos.
func HandleDeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id != actingUserID(c) {
		return respond(c, 403, nil, "you can only delete your own account")
	}

	result, err := store.DeleteUser(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, 200, result, "user deleted successfully")
}
