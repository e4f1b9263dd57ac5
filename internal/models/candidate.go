package models

import (
	"time"
)

type CandidateStatus string

const (
	StatusPending    CandidateStatus = "pending"
	StatusProcessing CandidateStatus = "processing"
	StatusCompleted  CandidateStatus = "completed"
	StatusFailed     CandidateStatus = "failed"
)

var statusTransitions = map[CandidateStatus][]CandidateStatus{
	StatusPending:    {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusCompleted},
	StatusFailed:     {StatusPending},
}

// Valid reports whether s is one of the known statuses.
func (s CandidateStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether a record in status s may move to next.
// A completed record only accepts a corrective overwrite.
func (s CandidateStatus) CanTransition(next CandidateStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CandidateRecord is the merged result of one evaluation run.
type CandidateRecord struct {
	ID               string           `gorm:"type:text;primaryKey" json:"id"`
	Name             *string          `gorm:"type:text" json:"name"`
	ResumeKey        string           `gorm:"type:text;not null" json:"resume_key"`
	JobKey           *string          `gorm:"type:text" json:"job_key,omitempty"`
	Status           CandidateStatus  `gorm:"type:text;not null;default:'pending';index" json:"status"`
	JobTitle         *string          `gorm:"type:text" json:"job_title"`
	ResumeParsing    ParsedResume     `gorm:"type:jsonb;serializer:json" json:"resume_parsing"`
	JobAnalysis      JobRequirements  `gorm:"type:jsonb;serializer:json" json:"job_analysis"`
	ResumeEvaluation EvaluationResult `gorm:"type:jsonb;serializer:json" json:"resume_evaluation"`
	GapAnalysis      GapAnalysis      `gorm:"type:jsonb;serializer:json" json:"gap_analysis"`
	CandidateRating  Rating           `gorm:"type:jsonb;serializer:json" json:"candidate_rating"`
	InterviewNotes   InterviewNotes   `gorm:"type:jsonb;serializer:json" json:"interview_notes"`
	Rating           *float64         `gorm:"type:double precision" json:"rating"`
	Partial          bool             `gorm:"not null;default:false" json:"partial"`
	Warnings         []string         `gorm:"type:jsonb;serializer:json" json:"warnings"`
	ErrorMessage     *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

func (CandidateRecord) TableName() string {
	return "candidates"
}

// NewPendingCandidate returns a record waiting to be picked up by a worker.
// Stage fields carry their empty shapes so the record is complete from the start.
func NewPendingCandidate(id, resumeKey string, jobKey, jobTitle *string, now time.Time) *CandidateRecord {
	return &CandidateRecord{
		ID:               id,
		ResumeKey:        resumeKey,
		JobKey:           jobKey,
		JobTitle:         jobTitle,
		Status:           StatusPending,
		ResumeParsing:    DefaultParsedResume(),
		JobAnalysis:      DefaultJobRequirements(),
		ResumeEvaluation: DefaultEvaluationResult(),
		GapAnalysis:      DefaultGapAnalysis(),
		CandidateRating:  DefaultRating(),
		InterviewNotes:   DefaultInterviewNotes(),
		Warnings:         []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
