package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ResultHandler struct {
	repo repositories.CandidateRepository
	log  *zap.Logger
}

func NewResultHandler(repo repositories.CandidateRepository, log *zap.Logger) *ResultHandler {
	return &ResultHandler{
		repo: repo,
		log:  logger.WithFields(log),
	}
}

// HandleGetResult returns the stored record, whatever its status.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	id := c.Params("id")

	record, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		}
		h.log.Error("failed to load candidate", zap.String(logger.FieldCandidateID, id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load candidate",
		})
	}

	return c.JSON(record)
}

// HandleList handles GET /candidates?status=&limit=
func (h *ResultHandler) HandleList(c *fiber.Ctx) error {
	status := models.CandidateStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be one of pending, processing, completed, failed",
		})
	}

	limit := c.QueryInt("limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	records, err := h.repo.List(c.UserContext(), status, limit)
	if err != nil {
		h.log.Error("failed to list candidates", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list candidates",
		})
	}
	if records == nil {
		records = []models.CandidateRecord{}
	}

	return c.JSON(models.CandidateListResponse{
		Candidates: records,
		Count:      len(records),
	})
}
