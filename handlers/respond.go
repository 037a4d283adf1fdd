package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-taskhive/apperr"
)

// respond wraps every response in the {success, data, message} envelope.
func respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	body := fiber.Map{"success": status < 400}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// respondError maps an error kind to a status code. Internal causes are logged
// server-side and never echoed to the client.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.Conflict:
		status = 400
	case apperr.NotFound:
		status = 404
	case apperr.Auth:
		status = 401
	case apperr.Forbidden:
		status = 403
	default:
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
		return respond(c, 500, nil, "something went wrong")
	}
	return respond(c, status, nil, err.Error())
}

// actingUserID returns the user id bound by the JWT middleware, or "" on
// unprotected routes.
func actingUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
