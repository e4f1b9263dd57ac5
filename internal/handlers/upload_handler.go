package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/services"
)

const (
	fieldResume         = "resume"
	fieldJobDescription = "job_description"
	fieldJobTitle       = "job_title"
)

type UploadHandler struct {
	storageService services.StorageService
	intake         services.IntakeService
	maxFileSize    int64
	log            *zap.Logger
}

func NewUploadHandler(
	storageService services.StorageService,
	intake services.IntakeService,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		intake:         intake,
		maxFileSize:    maxFileSize,
		log:            logger.WithFields(log),
	}
}

// HandleUpload stores a resume and/or a job description. An uploaded resume
// also starts an evaluation run, scored against the job description from the
// same request when there is one.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	resume := firstFile(form, fieldResume)
	jobDescription := firstFile(form, fieldJobDescription)
	if resume == nil && jobDescription == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid files uploaded. Please upload 'resume' and/or 'job_description' as PDF, TXT or MD files.",
		})
	}

	for _, file := range []*multipart.FileHeader{resume, jobDescription} {
		if file != nil && h.maxFileSize > 0 && file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("%s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}
	}

	result := models.UploadResult{Message: "Files uploaded successfully"}

	var jobKey string
	if jobDescription != nil {
		jobKey, err = h.storageService.SaveFile(c.UserContext(), jobDescription, services.PrefixJobs)
		if err != nil {
			return h.saveError(c, fieldJobDescription, err)
		}
		result.Documents = append(result.Documents, models.UploadResponse{
			Key:          jobKey,
			OriginalName: jobDescription.Filename,
			FileType:     fieldJobDescription,
		})
	}

	if resume != nil {
		resumeKey, err := h.storageService.SaveFile(c.UserContext(), resume, services.PrefixResumes)
		if err != nil {
			h.removeOrphans(c, jobKey)
			return h.saveError(c, fieldResume, err)
		}

		record, err := h.intake.Submit(c.UserContext(), resumeKey, jobKey, firstValue(form, fieldJobTitle))
		if err != nil {
			// Cleanup uploaded files if the candidate record could not be created
			h.removeOrphans(c, resumeKey, jobKey)
			h.log.Error("failed to create candidate", zap.String(logger.FieldObjectKey, resumeKey), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create candidate record",
			})
		}

		result.Documents = append(result.Documents, models.UploadResponse{
			Key:          resumeKey,
			OriginalName: resume.Filename,
			FileType:     fieldResume,
		})
		result.Candidate = &models.EvaluateResponse{
			ID:     record.ID,
			Status: string(record.Status),
		}
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// removeOrphans deletes objects stored earlier in a request that failed. A job
// description left behind would be picked up as the latest one under jobs/.
func (h *UploadHandler) removeOrphans(c *fiber.Ctx, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := h.storageService.DeleteFile(c.UserContext(), key); err != nil {
			h.log.Warn("failed to remove orphaned upload", zap.String(logger.FieldObjectKey, key), zap.Error(err))
		}
	}
}

func (h *UploadHandler) saveError(c *fiber.Ctx, field string, err error) error {
	if errors.Is(err, services.ErrUnsupportedFile) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("%s: %v", field, err),
		})
	}

	h.log.Error("failed to store upload", zap.String("field", field), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fmt.Sprintf("failed to save %s file", field),
	})
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if files, exists := form.File[field]; exists && len(files) > 0 {
		return files[0]
	}
	return nil
}

func firstValue(form *multipart.Form, field string) string {
	if values := form.Value[field]; len(values) > 0 {
		return values[0]
	}
	return ""
}
