package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/api/handlers"
	"github.com/maheshrc27/reelpost/internal/api/middleware"
)

// NewApp builds the status API. Every route lives under /api and requires a
// bearer token.
func NewApp(cfg config.Config, results *handlers.ResultsHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("request failed", "path", c.Path(), "error", err)
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/results", results.ListResults)
	api.Get("/summary", results.Summary)
	api.Get("/plan/warnings", results.PlanWarnings)
	api.Post("/runs", results.EnqueueRun)

	return app
}
