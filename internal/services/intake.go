package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/repositories"
)

var ErrInvalidRequest = errors.New("invalid request")

// IntakeService registers evaluation runs and hands them to the worker.
type IntakeService interface {
	Submit(ctx context.Context, resumeKey, jobKey, jobTitle string) (*models.CandidateRecord, error)
	Retry(ctx context.Context, candidateID string) error
}

type intakeService struct {
	repo   repositories.CandidateRepository
	worker Worker
	log    *zap.Logger
}

// NewIntakeService returns an intake that enqueues on worker. A nil worker
// only records the run, which the caller then evaluates itself.
func NewIntakeService(repo repositories.CandidateRepository, worker Worker, log *zap.Logger) IntakeService {
	return &intakeService{
		repo:   repo,
		worker: worker,
		log:    logger.WithFields(log),
	}
}

func (s *intakeService) Submit(ctx context.Context, resumeKey, jobKey, jobTitle string) (*models.CandidateRecord, error) {
	resumeKey = strings.TrimSpace(resumeKey)
	if resumeKey == "" {
		return nil, fmt.Errorf("%w: resume_key is required", ErrInvalidRequest)
	}

	record := models.NewPendingCandidate(uuid.New().String(), resumeKey, optional(jobKey), optional(jobTitle), time.Now())
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("candidate submitted", logger.StringFields(
		logger.FieldCandidateID, record.ID,
		logger.FieldObjectKey, resumeKey,
	)...)

	s.enqueue(record.ID)
	return record, nil
}

func (s *intakeService) Retry(ctx context.Context, candidateID string) error {
	if err := s.repo.Retry(ctx, candidateID); err != nil {
		return err
	}
	s.enqueue(candidateID)
	return nil
}

func (s *intakeService) enqueue(candidateID string) {
	if s.worker == nil {
		return
	}
	if !s.worker.EnqueueJob(candidateID) {
		s.log.Warn("candidate left for the pending poller", zap.String(logger.FieldCandidateID, candidateID))
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
