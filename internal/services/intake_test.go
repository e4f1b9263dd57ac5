package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/repositories"
)

var fixedTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingWorker struct {
	enqueued []string
	accept   bool
}

func (w *recordingWorker) Start(context.Context) {}

func (w *recordingWorker) Stop() {}

func (w *recordingWorker) EnqueueJob(candidateID string) bool {
	w.enqueued = append(w.enqueued, candidateID)
	return w.accept
}

func TestIntakeSubmit(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	worker := &recordingWorker{accept: true}
	intake := NewIntakeService(repo, worker, nil)

	record, err := intake.Submit(context.Background(), " resumes/a/cv.pdf ", "", " Backend Engineer ")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	stored := repo.get(record.ID)
	if stored.Status != models.StatusPending {
		t.Fatalf("expected pending, got %q", stored.Status)
	}
	if stored.ResumeKey != "resumes/a/cv.pdf" {
		t.Fatalf("unexpected resume key %q", stored.ResumeKey)
	}
	if stored.JobKey != nil {
		t.Fatalf("expected nil job key, got %q", *stored.JobKey)
	}
	if stored.JobTitle == nil || *stored.JobTitle != "Backend Engineer" {
		t.Fatalf("unexpected job title %v", stored.JobTitle)
	}
	if len(worker.enqueued) != 1 || worker.enqueued[0] != record.ID {
		t.Fatalf("expected record to be enqueued, got %v", worker.enqueued)
	}

	if _, err := intake.Submit(context.Background(), "  ", "", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestIntakeSubmitWithoutWorker(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	record, err := NewIntakeService(repo, nil, nil).Submit(context.Background(), "resumes/a/cv.txt", "jobs/b/jd.md", "")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if stored := repo.get(record.ID); stored.JobKey == nil || *stored.JobKey != "jobs/b/jd.md" {
		t.Fatalf("unexpected job key %v", stored.JobKey)
	}
}

func TestIntakeRetry(t *testing.T) {
	t.Parallel()

	failed := models.NewPendingCandidate("c-1", "resumes/a/cv.txt", nil, nil, fixedTime)
	failed.Status = models.StatusFailed
	completed := models.NewPendingCandidate("c-2", "resumes/b/cv.txt", nil, nil, fixedTime)
	completed.Status = models.StatusCompleted

	repo := newFakeRepo(failed, completed)
	worker := &recordingWorker{accept: true}
	intake := NewIntakeService(repo, worker, nil)

	if err := intake.Retry(context.Background(), "c-1"); err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if stored := repo.get("c-1"); stored.Status != models.StatusPending {
		t.Fatalf("expected pending, got %q", stored.Status)
	}

	if err := intake.Retry(context.Background(), "c-2"); !errors.Is(err, repositories.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := intake.Retry(context.Background(), "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(worker.enqueued) != 1 {
		t.Fatalf("expected only the retried record to be enqueued, got %v", worker.enqueued)
	}
}
