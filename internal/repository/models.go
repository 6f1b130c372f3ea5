package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Catch is the database row for a logged catch.
type Catch struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Species            string
	LengthCm           sql.NullFloat64
	WeightKg           sql.NullFloat64
	Technique          sql.NullString
	SpotType           sql.NullString
	IsSensitiveSpecies bool
	CaughtAt           time.Time
	Location           sql.NullString
	Tags               []string
	PhotoKey           sql.NullString
	ThumbnailKey       sql.NullString
	AnalysisStatus     string
	Weather            pqtype.NullRawMessage
	ComplianceStatus   string
	ComplianceMessage  string
	AiAdvice           string
	RuleVersion        string
	EvalSeq            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Profile is the database row for an angler profile.
type Profile struct {
	UserID      uuid.UUID
	DisplayName string
	PhotoUrl    string
	IsPublic    bool
	BirthDate   sql.NullTime
	ShowAge     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job is the database row for a background job.
type Job struct {
	ID           uuid.UUID
	JobType      string
	Payload      json.RawMessage
	Status       string
	Priority     int32
	Attempts     int32
	MaxAttempts  int32
	ErrorMessage sql.NullString
	ScheduledAt  time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AiUsage is the database row for one vision API call.
type AiUsage struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CatchID      uuid.NullUUID
	Model        string
	InputTokens  int32
	OutputTokens int32
	CostUsd      float64
	CreatedAt    time.Time
}
