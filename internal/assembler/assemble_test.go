package assembler

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"alfredoptarigan/resume-evaluator/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newFixedAssembler(t *testing.T) *Assembler {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return fixedNow }
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return a
}

func defaultOutputs() map[Stage]StructuredValue {
	outputs := make(map[Stage]StructuredValue, len(Stages))
	for _, stage := range Stages {
		outputs[stage] = Default(stage.Kind())
	}
	return outputs
}

func TestAssembleDefaults(t *testing.T) {
	t.Parallel()

	a := newFixedAssembler(t)

	record, err := a.Assemble("c-1", defaultOutputs(), "resumes/x.txt", "Engineer")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	if record.ID != "c-1" {
		t.Fatalf("unexpected id %q", record.ID)
	}
	if record.Status != models.StatusCompleted {
		t.Fatalf("expected completed status, got %q", record.Status)
	}
	if record.ResumeKey != "resumes/x.txt" {
		t.Fatalf("unexpected resume key %q", record.ResumeKey)
	}
	if record.JobTitle == nil || *record.JobTitle != "Engineer" {
		t.Fatalf("unexpected job title %v", record.JobTitle)
	}
	if record.Partial {
		t.Fatalf("expected complete record")
	}
	if len(record.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", record.Warnings)
	}
	if record.Rating != nil {
		t.Fatalf("expected nil rating, got %v", *record.Rating)
	}
	if record.Name == nil || *record.Name != "X" {
		t.Fatalf("expected name derived from key, got %v", record.Name)
	}
	if record.CompletedAt == nil || !record.CompletedAt.Equal(fixedNow) {
		t.Fatalf("unexpected completed_at %v", record.CompletedAt)
	}
}

func TestAssembleEncodesEveryField(t *testing.T) {
	t.Parallel()

	a := newFixedAssembler(t)

	record, err := a.Assemble("c-1", defaultOutputs(), "resumes/x.txt", "")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if record.JobTitle != nil {
		t.Fatalf("expected nil job title for empty input, got %q", *record.JobTitle)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "name", "resume_key", "status", "job_title", "rating", "partial", "warnings"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("missing key %q in %s", key, encoded)
		}
	}
	for _, stage := range Stages {
		if _, ok := doc[string(stage)].(map[string]any); !ok {
			t.Fatalf("missing stage object %q in %s", stage, encoded)
		}
	}

	interview := doc[string(StageInterviewNotes)].(map[string]any)
	if list, ok := interview["technical_questions"].([]any); !ok || len(list) != 0 {
		t.Fatalf("expected empty list for technical_questions, got %v", interview["technical_questions"])
	}
	if warnings, ok := doc["warnings"].([]any); !ok || len(warnings) != 0 {
		t.Fatalf("expected empty warnings list, got %v", doc["warnings"])
	}
}

func TestAssembleValidation(t *testing.T) {
	t.Parallel()

	a := newFixedAssembler(t)

	tests := []struct {
		name        string
		candidateID string
		resumeKey   string
		field       string
	}{
		{name: "empty id", candidateID: "", resumeKey: "resumes/x.txt", field: "candidate_id"},
		{name: "blank id", candidateID: "   ", resumeKey: "resumes/x.txt", field: "candidate_id"},
		{name: "empty key", candidateID: "c-1", resumeKey: "", field: "resume_key"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record, err := a.Assemble(tt.candidateID, defaultOutputs(), tt.resumeKey, "Engineer")
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if record != nil {
				t.Fatalf("expected no record on error")
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestAssembleMarksPartialRecords(t *testing.T) {
	t.Parallel()

	a := newFixedAssembler(t)

	outputs := defaultOutputs()
	delete(outputs, StageInterviewNotes)
	outputs[StageGapAnalysis] = Failed(KindGapAnalysis)
	outputs[StageCandidateRating] = Default(KindParsedResume)

	record, err := a.Assemble("c-2", outputs, "resumes/x.txt", "Engineer")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	if !record.Partial {
		t.Fatalf("expected partial record")
	}
	if record.Status != models.StatusCompleted {
		t.Fatalf("partial records are still completed, got %q", record.Status)
	}

	want := []string{
		"gap_analysis: parse failure",
		"candidate_rating: unexpected parsed_resume value",
		"interview_notes: missing",
	}
	if strings.Join(record.Warnings, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected warnings: %v", record.Warnings)
	}
	if record.InterviewNotes.TechnicalQuestions == nil {
		t.Fatalf("expected default interview notes")
	}
	if record.CandidateRating.Strengths == nil {
		t.Fatalf("expected default rating")
	}
}

func TestAssembleSchemaIssuesOnlyWarn(t *testing.T) {
	t.Parallel()

	a := newFixedAssembler(t)

	outputs := defaultOutputs()
	outputs[StageJobAnalysis] = a.Extract(`{"required_skills": ["Go"]}`, KindJobRequirements)

	record, err := a.Assemble("c-3", outputs, "resumes/x.txt", "Engineer")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if record.Partial {
		t.Fatalf("schema issues must not mark the record partial")
	}
	if len(record.Warnings) != 1 || !strings.HasPrefix(record.Warnings[0], "job_analysis: ") {
		t.Fatalf("unexpected warnings: %v", record.Warnings)
	}
	if len(record.JobAnalysis.RequiredSkills) != 1 {
		t.Fatalf("expected extracted requirements, got %+v", record.JobAnalysis)
	}
}

func TestAssembleCopiesRatingAndName(t *testing.T) {
	t.Parallel()

	a := newFixedAssembler(t)

	outputs := defaultOutputs()
	outputs[StageResumeParsing] = a.Extract(`{"personal_info": {"name": "Jane Doe"}}`, KindParsedResume)
	outputs[StageCandidateRating] = a.Extract(`{"value": 4.2, "justification": "good"}`, KindRating)

	record, err := a.Assemble("c-4", outputs, "resumes/abc/someone_else.pdf", "Engineer")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	if record.Name == nil || *record.Name != "Jane Doe" {
		t.Fatalf("expected parsed name, got %v", record.Name)
	}
	if record.Rating == nil || *record.Rating != 4.2 {
		t.Fatalf("expected rating 4.2, got %v", record.Rating)
	}
	if record.Rating == record.CandidateRating.Value {
		t.Fatalf("rating must not alias the stage value")
	}
	if record.CandidateRating.Justification != "good" {
		t.Fatalf("unexpected justification %q", record.CandidateRating.Justification)
	}
}

func TestNameFromKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{key: "resumes/jane_doe.txt", want: "Jane Doe"},
		{key: "resumes/abc/JOHN-SMITH.pdf", want: "John Smith"},
		{key: "resumes/abc/jane_doe-smith.txt", want: "Jane Doe Smith"},
		{key: "resume", want: "Resume"},
		{key: "resumes/___.txt", want: ""},
		{key: "", want: ""},
	}

	for _, tt := range tests {
		if got := NameFromKey(tt.key); got != tt.want {
			t.Fatalf("NameFromKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
