package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/repositories"
	"alfredoptarigan/resume-evaluator/internal/services"
)

type EvaluationHandler struct {
	intake services.IntakeService
	log    *zap.Logger
}

func NewEvaluationHandler(intake services.IntakeService, log *zap.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		intake: intake,
		log:    logger.WithFields(log),
	}
}

// HandleEvaluate handles POST /evaluate
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.ResumeKey) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_key is required",
		})
	}

	record, err := h.intake.Submit(c.UserContext(), req.ResumeKey, req.JobKey, req.JobTitle)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.log.Error("failed to create candidate", zap.String(logger.FieldObjectKey, req.ResumeKey), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create evaluation job",
		})
	}

	// Return the candidate ID immediately
	return c.Status(fiber.StatusAccepted).JSON(models.EvaluateResponse{
		ID:     record.ID,
		Status: string(record.Status),
	})
}

// HandleRetry handles POST /candidates/:id/retry for failed runs.
func (h *EvaluationHandler) HandleRetry(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.intake.Retry(c.UserContext(), id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		case errors.Is(err, repositories.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Only failed candidates can be retried",
			})
		}
		h.log.Error("failed to retry candidate", zap.String(logger.FieldCandidateID, id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retry candidate",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.EvaluateResponse{
		ID:     id,
		Status: string(models.StatusPending),
	})
}
