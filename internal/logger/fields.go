package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/utils"
)

const (
	// FieldJobID is the structured log field key for a tracked job id.
	FieldJobID = "job_id"
	// FieldTitle is the structured log field key for a posting title.
	FieldTitle = "title"
	// FieldEmployer is the structured log field key for an employer name.
	FieldEmployer = "employer"
	// FieldBatchID is the structured log field key for an import run.
	FieldBatchID = "batch_id"

	maxTitleLog = 80
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// JobFields describes a tracked job. The id is omitted for jobs not stored yet.
func JobFields(j domain.Job) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if j.ID != 0 {
		fields = append(fields, zap.Int64(FieldJobID, j.ID))
	}
	return append(fields, StringFields(
		StringField{Key: FieldTitle, Value: utils.TruncateForLog(j.Title, maxTitleLog)},
		StringField{Key: FieldEmployer, Value: j.EmployerName},
	)...)
}

// CandidateFields describes a candidate posting.
func CandidateFields(c domain.Candidate) []zap.Field {
	return StringFields(
		StringField{Key: FieldTitle, Value: utils.TruncateForLog(c.Title, maxTitleLog)},
		StringField{Key: FieldEmployer, Value: c.Employer},
	)
}

// WithJob attaches the job fields to the logger.
func WithJob(logger *zap.Logger, j domain.Job) *zap.Logger {
	return WithFields(logger, JobFields(j)...)
}
