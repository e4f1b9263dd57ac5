package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-evaluator/internal/models"
)

var (
	ErrNotFound          = errors.New("candidate not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type CandidateRepository interface {
	Create(ctx context.Context, record *models.CandidateRecord) error
	FindByID(ctx context.Context, id string) (*models.CandidateRecord, error)
	UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) error
	Save(ctx context.Context, record *models.CandidateRecord) error
	MarkFailed(ctx context.Context, id string, errorMsg string) error
	Retry(ctx context.Context, id string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.CandidateRecord, error)
	List(ctx context.Context, status models.CandidateStatus, limit int) ([]models.CandidateRecord, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, record *models.CandidateRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(ctx context.Context, id string) (*models.CandidateRecord, error) {
	var record models.CandidateRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &record, nil
}

// sources returns the statuses from which next is reachable.
func sources(next models.CandidateStatus) []models.CandidateStatus {
	var from []models.CandidateStatus
	for _, status := range []models.CandidateStatus{
		models.StatusPending,
		models.StatusProcessing,
		models.StatusCompleted,
		models.StatusFailed,
	} {
		if status.CanTransition(next) {
			from = append(from, status)
		}
	}
	return from
}

// transition applies updates only while the stored status allows moving to
// next. The status guard sits in the WHERE clause so concurrent writers
// cannot skip a state.
func (r *candidateRepository) transition(ctx context.Context, id string, next models.CandidateStatus, updates map[string]interface{}) error {
	updates["status"] = next
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.CandidateRecord{}).
		Where("id = ? AND status IN ?", id, sources(next)).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return r.explainMiss(ctx, id, next)
	}

	return nil
}

func (r *candidateRepository) explainMiss(ctx context.Context, id string, next models.CandidateStatus) error {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	return r.transition(ctx, id, status, map[string]interface{}{})
}

// Save writes an assembled record. The stored row must be processing, or
// completed for a corrective overwrite.
func (r *candidateRepository) Save(ctx context.Context, record *models.CandidateRecord) error {
	if record.Status != models.StatusCompleted {
		return fmt.Errorf("%w: cannot save record in status %s", ErrInvalidTransition, record.Status)
	}

	record.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&models.CandidateRecord{}).
		Select("*").
		Omit("id", "created_at", "resume_key", "job_key").
		Where("id = ? AND status IN ?", record.ID, sources(models.StatusCompleted)).
		Updates(record)

	if result.Error != nil {
		return fmt.Errorf("failed to save candidate: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return r.explainMiss(ctx, record.ID, models.StatusCompleted)
	}

	return nil
}

func (r *candidateRepository) MarkFailed(ctx context.Context, id string, errorMsg string) error {
	return r.transition(ctx, id, models.StatusFailed, map[string]interface{}{
		"error_message": errorMsg,
	})
}

// Retry moves a failed record back to pending so the worker picks it up again.
func (r *candidateRepository) Retry(ctx context.Context, id string) error {
	return r.transition(ctx, id, models.StatusPending, map[string]interface{}{
		"error_message": nil,
	})
}

func (r *candidateRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.CandidateRecord, error) {
	var records []models.CandidateRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return records, nil
}

// List returns the newest records first. An empty status matches every record.
func (r *candidateRepository) List(ctx context.Context, status models.CandidateStatus, limit int) ([]models.CandidateRecord, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	records := []models.CandidateRecord{}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return records, nil
}
