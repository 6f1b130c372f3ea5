package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createAiUsage = `
INSERT INTO ai_usage (user_id, catch_id, model, input_tokens, output_tokens, cost_usd)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, catch_id, model, input_tokens, output_tokens, cost_usd, created_at`

type CreateAiUsageParams struct {
	UserID       uuid.UUID
	CatchID      uuid.NullUUID
	Model        string
	InputTokens  int32
	OutputTokens int32
	CostUsd      float64
}

func (q *Queries) CreateAiUsage(ctx context.Context, arg CreateAiUsageParams) (AiUsage, error) {
	row := q.db.QueryRowContext(ctx, createAiUsage,
		arg.UserID,
		arg.CatchID,
		arg.Model,
		arg.InputTokens,
		arg.OutputTokens,
		arg.CostUsd,
	)
	var u AiUsage
	err := row.Scan(
		&u.ID,
		&u.UserID,
		&u.CatchID,
		&u.Model,
		&u.InputTokens,
		&u.OutputTokens,
		&u.CostUsd,
		&u.CreatedAt,
	)
	return u, err
}

const sumAiUsageSince = `
SELECT
	COUNT(*) AS call_count,
	COALESCE(SUM(input_tokens), 0) AS input_tokens,
	COALESCE(SUM(output_tokens), 0) AS output_tokens,
	COALESCE(SUM(cost_usd), 0) AS cost_usd
FROM ai_usage
WHERE user_id = $1 AND created_at >= $2`

type SumAiUsageSinceParams struct {
	UserID uuid.UUID
	Since  time.Time
}

type SumAiUsageSinceRow struct {
	CallCount    int64
	InputTokens  int64
	OutputTokens int64
	CostUsd      float64
}

// SumAiUsageSince aggregates a user's vision API usage from the given time,
// typically the start of the current month.
func (q *Queries) SumAiUsageSince(ctx context.Context, arg SumAiUsageSinceParams) (SumAiUsageSinceRow, error) {
	var r SumAiUsageSinceRow
	err := q.db.QueryRowContext(ctx, sumAiUsageSince, arg.UserID, arg.Since).Scan(
		&r.CallCount,
		&r.InputTokens,
		&r.OutputTokens,
		&r.CostUsd,
	)
	return r, err
}
