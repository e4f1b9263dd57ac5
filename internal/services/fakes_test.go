package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"sync"

	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/repositories"
)

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]models.CandidateRecord
	saveErr error
	saves   int
}

func newFakeRepo(records ...*models.CandidateRecord) *fakeRepo {
	repo := &fakeRepo{records: make(map[string]models.CandidateRecord)}
	for _, r := range records {
		repo.records[r.ID] = *r
	}
	return repo
}

func (f *fakeRepo) Create(_ context.Context, record *models.CandidateRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = *record
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*models.CandidateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrNotFound, id)
	}
	return &record, nil
}

func (f *fakeRepo) transition(id string, next models.CandidateStatus, apply func(*models.CandidateRecord)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", repositories.ErrNotFound, id)
	}
	if !record.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", repositories.ErrInvalidTransition, record.Status, next)
	}
	record.Status = next
	if apply != nil {
		apply(&record)
	}
	f.records[id] = record
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status models.CandidateStatus) error {
	return f.transition(id, status, nil)
}

func (f *fakeRepo) Save(_ context.Context, record *models.CandidateRecord) error {
	f.mu.Lock()
	f.saves++
	saveErr := f.saveErr
	f.mu.Unlock()
	if saveErr != nil {
		return saveErr
	}
	return f.transition(record.ID, models.StatusCompleted, func(stored *models.CandidateRecord) {
		*stored = *record
	})
}

func (f *fakeRepo) MarkFailed(_ context.Context, id string, errorMsg string) error {
	return f.transition(id, models.StatusFailed, func(stored *models.CandidateRecord) {
		stored.ErrorMessage = &errorMsg
	})
}

func (f *fakeRepo) Retry(_ context.Context, id string) error {
	return f.transition(id, models.StatusPending, func(stored *models.CandidateRecord) {
		stored.ErrorMessage = nil
	})
}

func (f *fakeRepo) FindPendingJobs(ctx context.Context, limit int) ([]models.CandidateRecord, error) {
	return f.List(ctx, models.StatusPending, limit)
}

func (f *fakeRepo) List(_ context.Context, status models.CandidateStatus, limit int) ([]models.CandidateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CandidateRecord{}
	for _, record := range f.records {
		if status == "" || record.Status == status {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) get(id string) models.CandidateRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id]
}

type fakeStorage struct {
	objects map[string]string
	latest  string
}

func (f *fakeStorage) SaveFile(context.Context, *multipart.FileHeader, string) (string, error) {
	return "", fmt.Errorf("not supported")
}

func (f *fakeStorage) PutObject(_ context.Context, key string, data io.Reader, _ int64) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = string(b)
	return nil
}

func (f *fakeStorage) ReadText(_ context.Context, key string) (string, error) {
	text, ok := f.objects[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return text, nil
}

func (f *fakeStorage) LatestKey(context.Context, string) (string, error) {
	return f.latest, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) EnsureBucket(context.Context) error {
	return nil
}

// fakeGemini answers prompts through respond and records every prompt.
type fakeGemini struct {
	mu      sync.Mutex
	prompts []string
	respond func(ctx context.Context, prompt string) (string, error)
	embed   func(text string) ([]float32, error)
}

func (f *fakeGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.embed != nil {
		return f.embed(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, _ float32) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(ctx, prompt)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

func (f *fakeGemini) promptContaining(marker string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			return p
		}
	}
	return ""
}

type upsert struct {
	docID   string
	docType string
	text    string
}

type fakeQdrant struct {
	mu       sync.Mutex
	upserts  []upsert
	deleted  []string
	results  []SearchResult
	searched []string
	failText string
}

func (f *fakeQdrant) InitCollection(context.Context) error {
	return nil
}

func (f *fakeQdrant) UpsertDocument(_ context.Context, docID string, docType string, text string, _ []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failText != "" && strings.Contains(text, f.failText) {
		return fmt.Errorf("upsert rejected")
	}
	f.upserts = append(f.upserts, upsert{docID: docID, docType: docType, text: text})
	return nil
}

func (f *fakeQdrant) SearchSimilar(_ context.Context, _ []float32, docType string, _ int) ([]SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, docType)
	return f.results, nil
}

func (f *fakeQdrant) DeleteDocument(_ context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, docID)
	return nil
}
