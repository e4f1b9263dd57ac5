package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API below router.
func RegisterRoutes(router fiber.Router, upload *UploadHandler, evaluate *EvaluationHandler, result *ResultHandler) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.Post("/upload", upload.HandleUpload)
	router.Post("/evaluate", evaluate.HandleEvaluate)
	router.Get("/candidates", result.HandleList)
	router.Get("/candidates/:id", result.HandleGetResult)
	router.Post("/candidates/:id/retry", evaluate.HandleRetry)
}

// ErrorHandler renders errors that escape a handler as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
