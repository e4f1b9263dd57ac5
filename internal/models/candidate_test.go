package models

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm/schema"
)

func TestCandidateStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from CandidateStatus
		to   CandidateStatus
		want bool
	}{
		{from: StatusPending, to: StatusProcessing, want: true},
		{from: StatusPending, to: StatusFailed, want: true},
		{from: StatusPending, to: StatusCompleted, want: false},
		{from: StatusProcessing, to: StatusCompleted, want: true},
		{from: StatusProcessing, to: StatusFailed, want: true},
		{from: StatusProcessing, to: StatusPending, want: false},
		{from: StatusCompleted, to: StatusCompleted, want: true},
		{from: StatusCompleted, to: StatusProcessing, want: false},
		{from: StatusCompleted, to: StatusFailed, want: false},
		{from: StatusFailed, to: StatusPending, want: true},
		{from: StatusFailed, to: StatusCompleted, want: false},
		{from: CandidateStatus("unknown"), to: StatusPending, want: false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestCandidateStatusValid(t *testing.T) {
	t.Parallel()

	for _, status := range []CandidateStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		if !status.Valid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if CandidateStatus("done").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}

func TestNewPendingCandidateEncodesEmptyStages(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	record := NewPendingCandidate("c-1", "resumes/c-1/cv.pdf", nil, nil, now)

	if record.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", record.Status)
	}
	if !record.CreatedAt.Equal(now) || !record.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamps %v %v", record.CreatedAt, record.UpdatedAt)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc struct {
		Warnings       []string       `json:"warnings"`
		ResumeParsing  map[string]any `json:"resume_parsing"`
		InterviewNotes map[string]any `json:"interview_notes"`
		JobKey         *string        `json:"job_key"`
	}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.Warnings == nil {
		t.Fatalf("expected warnings to encode as an empty list: %s", encoded)
	}
	if skills, ok := doc.ResumeParsing["skills"].([]any); !ok || len(skills) != 0 {
		t.Fatalf("expected empty skills list: %s", encoded)
	}
	if _, ok := doc.InterviewNotes["areas_to_explore"].([]any); !ok {
		t.Fatalf("expected areas_to_explore list: %s", encoded)
	}
	if doc.JobKey != nil {
		t.Fatalf("expected job_key to be omitted")
	}
}

func TestCandidateRatingColumnKeepsFullPrecision(t *testing.T) {
	t.Parallel()

	parsed, err := schema.Parse(&CandidateRecord{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	field := parsed.LookUpField("rating")
	if field == nil {
		t.Fatalf("rating column missing")
	}
	// any configured scale (RATING_MAX=10, 100) and unrounded values must fit
	if field.DataType != schema.DataType("double precision") {
		t.Fatalf("unexpected rating column type %q", field.DataType)
	}
}
