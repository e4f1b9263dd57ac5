package assembler

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"

	"alfredoptarigan/resume-evaluator/internal/models"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports a structurally required field that is empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Assemble merges stage outputs into a completed CandidateRecord. Stages that
// are missing, failed to parse or carry the wrong kind are replaced by their
// default structure and listed in Warnings; the record is still completed.
func (a *Assembler) Assemble(candidateID string, outputs map[Stage]StructuredValue, resumeKey, jobTitle string) (*models.CandidateRecord, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return nil, &ValidationError{Field: "candidate_id"}
	}
	resumeKey = strings.TrimSpace(resumeKey)
	if resumeKey == "" {
		return nil, &ValidationError{Field: "resume_key"}
	}

	now := a.cfg.Now()
	record := models.NewPendingCandidate(candidateID, resumeKey, nil, optString(jobTitle), now)

	resolved := make(map[Stage]StructuredValue, len(Stages))
	for _, stage := range Stages {
		value, ok := outputs[stage]
		switch {
		case !ok:
			record.Partial = true
			record.Warnings = append(record.Warnings, fmt.Sprintf("%s: missing", stage))
			value = Default(stage.Kind())
		case value.Kind != stage.Kind():
			record.Partial = true
			record.Warnings = append(record.Warnings, fmt.Sprintf("%s: unexpected %s value", stage, value.Kind))
			value = Default(stage.Kind())
		case value.ParseFailed:
			record.Partial = true
			record.Warnings = append(record.Warnings, fmt.Sprintf("%s: parse failure", stage))
		case len(value.Issues) > 0:
			record.Warnings = append(record.Warnings, fmt.Sprintf("%s: %d schema issue(s)", stage, len(value.Issues)))
		}
		resolved[stage] = value
	}

	record.ResumeParsing = resolved[StageResumeParsing].ParsedResume()
	record.JobAnalysis = resolved[StageJobAnalysis].JobRequirements()
	record.ResumeEvaluation = resolved[StageResumeEvaluation].EvaluationResult()
	record.GapAnalysis = resolved[StageGapAnalysis].GapAnalysis()
	record.CandidateRating = resolved[StageCandidateRating].Rating()
	record.InterviewNotes = resolved[StageInterviewNotes].InterviewNotes()

	if v := record.CandidateRating.Value; v != nil {
		rating := *v
		record.Rating = &rating
	}

	if info := record.ResumeParsing.PersonalInfo; info.Name != nil {
		name := *info.Name
		record.Name = &name
	} else {
		record.Name = optString(NameFromKey(resumeKey))
	}

	record.Status = models.StatusCompleted
	record.CompletedAt = &now

	return record, nil
}

// NameFromKey derives a display name from a resume object key:
// "resumes/abc/jane_doe-smith.txt" becomes "Jane Doe Smith".
func NameFromKey(key string) string {
	base := path.Base(strings.TrimSpace(key))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	words := strings.Fields(base)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
