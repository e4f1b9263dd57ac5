// Package assembler turns free-text model answers into schema-conformant stage
// values and folds them into a CandidateRecord.
package assembler

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/resume-evaluator/internal/models"
)

// SchemaKind identifies the shape a stage answer is expected to have.
type SchemaKind string

const (
	KindParsedResume     SchemaKind = "parsed_resume"
	KindJobRequirements  SchemaKind = "job_requirements"
	KindEvaluationResult SchemaKind = "evaluation_result"
	KindGapAnalysis      SchemaKind = "gap_analysis"
	KindRating           SchemaKind = "rating"
	KindInterviewNotes   SchemaKind = "interview_notes"
)

var kinds = []SchemaKind{
	KindParsedResume,
	KindJobRequirements,
	KindEvaluationResult,
	KindGapAnalysis,
	KindRating,
	KindInterviewNotes,
}

// Stage is one evaluation sub-task. Its name is also the record field it fills.
type Stage string

const (
	StageResumeParsing    Stage = "resume_parsing"
	StageJobAnalysis      Stage = "job_analysis"
	StageResumeEvaluation Stage = "resume_evaluation"
	StageGapAnalysis      Stage = "gap_analysis"
	StageCandidateRating  Stage = "candidate_rating"
	StageInterviewNotes   Stage = "interview_notes"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageResumeParsing,
	StageJobAnalysis,
	StageResumeEvaluation,
	StageGapAnalysis,
	StageCandidateRating,
	StageInterviewNotes,
}

// Kind returns the schema the stage produces.
func (s Stage) Kind() SchemaKind {
	switch s {
	case StageResumeParsing:
		return KindParsedResume
	case StageJobAnalysis:
		return KindJobRequirements
	case StageResumeEvaluation:
		return KindEvaluationResult
	case StageGapAnalysis:
		return KindGapAnalysis
	case StageCandidateRating:
		return KindRating
	case StageInterviewNotes:
		return KindInterviewNotes
	default:
		return ""
	}
}

// StructuredValue is the validated output of a single stage. The payload is
// always one of the models stage types matching Kind.
type StructuredValue struct {
	Kind        SchemaKind
	ParseFailed bool
	Issues      []string
	value       any
}

// Default returns the empty structure for kind.
func Default(kind SchemaKind) StructuredValue {
	return StructuredValue{Kind: kind, value: defaultFor(kind)}
}

// Failed returns the empty structure for kind flagged as a parse failure.
func Failed(kind SchemaKind) StructuredValue {
	v := Default(kind)
	v.ParseFailed = true
	return v
}

func defaultFor(kind SchemaKind) any {
	switch kind {
	case KindParsedResume:
		return models.DefaultParsedResume()
	case KindJobRequirements:
		return models.DefaultJobRequirements()
	case KindEvaluationResult:
		return models.DefaultEvaluationResult()
	case KindGapAnalysis:
		return models.DefaultGapAnalysis()
	case KindRating:
		return models.DefaultRating()
	case KindInterviewNotes:
		return models.DefaultInterviewNotes()
	default:
		return map[string]any{}
	}
}

// Value returns the payload, falling back to the kind's default.
func (v StructuredValue) Value() any {
	if v.value == nil {
		return defaultFor(v.Kind)
	}
	return v.value
}

func (v StructuredValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value())
}

func (v StructuredValue) ParsedResume() models.ParsedResume {
	if r, ok := v.value.(models.ParsedResume); ok {
		return r
	}
	return models.DefaultParsedResume()
}

func (v StructuredValue) JobRequirements() models.JobRequirements {
	if r, ok := v.value.(models.JobRequirements); ok {
		return r
	}
	return models.DefaultJobRequirements()
}

func (v StructuredValue) EvaluationResult() models.EvaluationResult {
	if r, ok := v.value.(models.EvaluationResult); ok {
		return r
	}
	return models.DefaultEvaluationResult()
}

func (v StructuredValue) GapAnalysis() models.GapAnalysis {
	if r, ok := v.value.(models.GapAnalysis); ok {
		return r
	}
	return models.DefaultGapAnalysis()
}

func (v StructuredValue) Rating() models.Rating {
	if r, ok := v.value.(models.Rating); ok {
		return r
	}
	return models.DefaultRating()
}

func (v StructuredValue) InterviewNotes() models.InterviewNotes {
	if r, ok := v.value.(models.InterviewNotes); ok {
		return r
	}
	return models.DefaultInterviewNotes()
}

// Config holds the assembler's construction-time settings.
type Config struct {
	MinRating float64
	MaxRating float64
	Now       func() time.Time
}

func DefaultConfig() Config {
	return Config{
		MinRating: 1,
		MaxRating: 5,
		Now:       time.Now,
	}
}

// Assembler is stateless after construction and safe for concurrent use.
type Assembler struct {
	cfg     Config
	schemas map[SchemaKind]*gojsonschema.Schema
}

//go:embed schemas/*.json
var schemaFS embed.FS

func New(cfg Config) (*Assembler, error) {
	defaults := DefaultConfig()
	if cfg.MinRating == 0 && cfg.MaxRating == 0 {
		cfg.MinRating = defaults.MinRating
		cfg.MaxRating = defaults.MaxRating
	}
	if cfg.MinRating >= cfg.MaxRating {
		return nil, fmt.Errorf("invalid rating range [%v, %v]", cfg.MinRating, cfg.MaxRating)
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}

	schemas := make(map[SchemaKind]*gojsonschema.Schema, len(kinds))
	for _, kind := range kinds {
		data, err := schemaFS.ReadFile("schemas/" + string(kind) + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s schema: %w", kind, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", kind, err)
		}
		schemas[kind] = schema
	}

	return &Assembler{cfg: cfg, schemas: schemas}, nil
}
