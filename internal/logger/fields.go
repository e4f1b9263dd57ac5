package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldCandidateID = "candidate_id"
	FieldStage       = "stage"
	FieldObjectKey   = "object_key"
	FieldModel       = "ai_model"
)

// StringFields converts key/value pairs into zap fields, skipping pairs whose
// key or value is blank after trimming.
func StringFields(pairs ...string) []zap.Field {
	result := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger so callers never have to check.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ForCandidate scopes a logger to one evaluation run.
func ForCandidate(logger *zap.Logger, candidateID, resumeKey string) *zap.Logger {
	return WithFields(logger, StringFields(FieldCandidateID, candidateID, FieldObjectKey, resumeKey)...)
}
