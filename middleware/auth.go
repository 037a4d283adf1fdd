package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-taskhive/utils"
)

// JWTMiddleware verifies the bearer token and binds the acting user id into
// the request context.
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "missing token"})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "invalid token format"})
	}

	userID, err := utils.ParseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	c.Locals("user_id", userID)
	return c.Next()
}
