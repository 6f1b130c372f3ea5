package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const catchColumns = `id, user_id, species, length_cm, weight_kg, technique, spot_type,
	is_sensitive_species, caught_at, location, tags, photo_key, thumbnail_key,
	analysis_status, weather, compliance_status, compliance_message, ai_advice,
	rule_version, eval_seq, created_at, updated_at`

// scanCatch scans one catches row in catchColumns order.
func scanCatch(row interface{ Scan(...interface{}) error }) (Catch, error) {
	var c Catch
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Species,
		&c.LengthCm,
		&c.WeightKg,
		&c.Technique,
		&c.SpotType,
		&c.IsSensitiveSpecies,
		&c.CaughtAt,
		&c.Location,
		pq.Array(&c.Tags),
		&c.PhotoKey,
		&c.ThumbnailKey,
		&c.AnalysisStatus,
		&c.Weather,
		&c.ComplianceStatus,
		&c.ComplianceMessage,
		&c.AiAdvice,
		&c.RuleVersion,
		&c.EvalSeq,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

const createCatch = `
INSERT INTO catches (
	user_id, species, length_cm, weight_kg, technique, spot_type,
	is_sensitive_species, caught_at, location, tags, weather,
	compliance_status, compliance_message, ai_advice, rule_version
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
)
RETURNING ` + catchColumns

type CreateCatchParams struct {
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
	Weather            pqtype.NullRawMessage
	ComplianceStatus   string
	ComplianceMessage  string
	AiAdvice           string
	RuleVersion        string
}

func (q *Queries) CreateCatch(ctx context.Context, arg CreateCatchParams) (Catch, error) {
	row := q.db.QueryRowContext(ctx, createCatch,
		arg.UserID,
		arg.Species,
		arg.LengthCm,
		arg.WeightKg,
		arg.Technique,
		arg.SpotType,
		arg.IsSensitiveSpecies,
		arg.CaughtAt,
		arg.Location,
		pq.Array(arg.Tags),
		arg.Weather,
		arg.ComplianceStatus,
		arg.ComplianceMessage,
		arg.AiAdvice,
		arg.RuleVersion,
	)
	return scanCatch(row)
}

const getCatchByIDAndUserID = `
SELECT ` + catchColumns + `
FROM catches
WHERE id = $1 AND user_id = $2`

type GetCatchByIDAndUserIDParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetCatchByIDAndUserID(ctx context.Context, arg GetCatchByIDAndUserIDParams) (Catch, error) {
	row := q.db.QueryRowContext(ctx, getCatchByIDAndUserID, arg.ID, arg.UserID)
	return scanCatch(row)
}

const getCatchByID = `
SELECT ` + catchColumns + `
FROM catches
WHERE id = $1`

func (q *Queries) GetCatchByID(ctx context.Context, id uuid.UUID) (Catch, error) {
	row := q.db.QueryRowContext(ctx, getCatchByID, id)
	return scanCatch(row)
}

const listCatchesByUserID = `
SELECT ` + catchColumns + `
FROM catches
WHERE user_id = $1
ORDER BY caught_at DESC
LIMIT $2 OFFSET $3`

type ListCatchesByUserIDParams struct {
	UserID uuid.UUID
	Limit  int32
	Offset int32
}

func (q *Queries) ListCatchesByUserID(ctx context.Context, arg ListCatchesByUserIDParams) ([]Catch, error) {
	rows, err := q.db.QueryContext(ctx, listCatchesByUserID, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Catch
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCatchesByUserID = `
SELECT COUNT(*) FROM catches WHERE user_id = $1`

func (q *Queries) CountCatchesByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCatchesByUserID, userID).Scan(&count)
	return count, err
}

const updateCatch = `
UPDATE catches SET
	species = $3,
	length_cm = $4,
	weight_kg = $5,
	technique = $6,
	spot_type = $7,
	is_sensitive_species = $8,
	caught_at = $9,
	location = $10,
	tags = $11,
	updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + catchColumns

type UpdateCatchParams struct {
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
}

func (q *Queries) UpdateCatch(ctx context.Context, arg UpdateCatchParams) (Catch, error) {
	row := q.db.QueryRowContext(ctx, updateCatch,
		arg.ID,
		arg.UserID,
		arg.Species,
		arg.LengthCm,
		arg.WeightKg,
		arg.Technique,
		arg.SpotType,
		arg.IsSensitiveSpecies,
		arg.CaughtAt,
		arg.Location,
		pq.Array(arg.Tags),
	)
	return scanCatch(row)
}

const deleteCatch = `
DELETE FROM catches WHERE id = $1 AND user_id = $2`

type DeleteCatchParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteCatch(ctx context.Context, arg DeleteCatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCatch, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateCatchPhoto = `
UPDATE catches SET
	photo_key = $2,
	thumbnail_key = $3,
	analysis_status = $4,
	updated_at = now()
WHERE id = $1`

type UpdateCatchPhotoParams struct {
	ID             uuid.UUID
	PhotoKey       sql.NullString
	ThumbnailKey   sql.NullString
	AnalysisStatus string
}

func (q *Queries) UpdateCatchPhoto(ctx context.Context, arg UpdateCatchPhotoParams) error {
	_, err := q.db.ExecContext(ctx, updateCatchPhoto,
		arg.ID, arg.PhotoKey, arg.ThumbnailKey, arg.AnalysisStatus)
	return err
}

const updateCatchAnalysisStatus = `
UPDATE catches SET analysis_status = $2, updated_at = now() WHERE id = $1`

type UpdateCatchAnalysisStatusParams struct {
	ID             uuid.UUID
	AnalysisStatus string
}

func (q *Queries) UpdateCatchAnalysisStatus(ctx context.Context, arg UpdateCatchAnalysisStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateCatchAnalysisStatus, arg.ID, arg.AnalysisStatus)
	return err
}

const updateCatchAnalysis = `
UPDATE catches SET
	species = $2,
	length_cm = $3,
	weight_kg = $4,
	technique = $5,
	spot_type = $6,
	is_sensitive_species = $7,
	analysis_status = $8,
	updated_at = now()
WHERE id = $1
RETURNING ` + catchColumns

type UpdateCatchAnalysisParams struct {
	ID                 uuid.UUID
	Species            string
	LengthCm           sql.NullFloat64
	WeightKg           sql.NullFloat64
	Technique          sql.NullString
	SpotType           sql.NullString
	IsSensitiveSpecies bool
	AnalysisStatus     string
}

func (q *Queries) UpdateCatchAnalysis(ctx context.Context, arg UpdateCatchAnalysisParams) (Catch, error) {
	row := q.db.QueryRowContext(ctx, updateCatchAnalysis,
		arg.ID,
		arg.Species,
		arg.LengthCm,
		arg.WeightKg,
		arg.Technique,
		arg.SpotType,
		arg.IsSensitiveSpecies,
		arg.AnalysisStatus,
	)
	return scanCatch(row)
}

const bumpCatchEvalSeq = `
UPDATE catches SET eval_seq = eval_seq + 1, updated_at = now()
WHERE id = $1
RETURNING eval_seq`

// BumpCatchEvalSeq reserves the next evaluation sequence number for a catch.
// The returned value identifies the most recently initiated evaluation.
func (q *Queries) BumpCatchEvalSeq(ctx context.Context, id uuid.UUID) (int64, error) {
	var seq int64
	err := q.db.QueryRowContext(ctx, bumpCatchEvalSeq, id).Scan(&seq)
	return seq, err
}

const applyCatchVerdict = `
UPDATE catches SET
	compliance_status = $3,
	compliance_message = $4,
	ai_advice = $5,
	rule_version = $6,
	updated_at = now()
WHERE id = $1 AND eval_seq = $2`

type ApplyCatchVerdictParams struct {
	ID                uuid.UUID
	EvalSeq           int64
	ComplianceStatus  string
	ComplianceMessage string
	AiAdvice          string
	RuleVersion       string
}

// ApplyCatchVerdict stores an evaluation result, but only if no newer
// evaluation has been initiated since EvalSeq was reserved. Returns the
// number of rows updated; 0 means the result was stale and discarded.
func (q *Queries) ApplyCatchVerdict(ctx context.Context, arg ApplyCatchVerdictParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, applyCatchVerdict,
		arg.ID,
		arg.EvalSeq,
		arg.ComplianceStatus,
		arg.ComplianceMessage,
		arg.AiAdvice,
		arg.RuleVersion,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateCatchComplianceStatus = `
UPDATE catches SET compliance_status = $3, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + catchColumns

type UpdateCatchComplianceStatusParams struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ComplianceStatus string
}

func (q *Queries) UpdateCatchComplianceStatus(ctx context.Context, arg UpdateCatchComplianceStatusParams) (Catch, error) {
	row := q.db.QueryRowContext(ctx, updateCatchComplianceStatus,
		arg.ID, arg.UserID, arg.ComplianceStatus)
	return scanCatch(row)
}
