package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func GetSubject(c *fiber.Ctx) string {
	subject, _ := c.Locals("subject").(string)
	return subject
}
