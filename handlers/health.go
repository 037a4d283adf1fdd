package handlers

import "github.com/gofiber/fiber/v2"

// HandleHealthCheck is the liveness probe.
func HandleHealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}
