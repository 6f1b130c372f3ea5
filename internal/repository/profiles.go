package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const profileColumns = `user_id, display_name, photo_url, is_public, birth_date, show_age, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.UserID,
		&p.DisplayName,
		&p.PhotoUrl,
		&p.IsPublic,
		&p.BirthDate,
		&p.ShowAge,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const getProfileByUserID = `
SELECT ` + profileColumns + `
FROM profiles
WHERE user_id = $1`

func (q *Queries) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfileByUserID, userID)
	return scanProfile(row)
}

const upsertProfile = `
INSERT INTO profiles (user_id, display_name, photo_url, is_public, birth_date, show_age)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	photo_url = EXCLUDED.photo_url,
	is_public = EXCLUDED.is_public,
	birth_date = EXCLUDED.birth_date,
	show_age = EXCLUDED.show_age,
	updated_at = now()
RETURNING ` + profileColumns

type UpsertProfileParams struct {
	UserID      uuid.UUID
	DisplayName string
	PhotoUrl    string
	IsPublic    bool
	BirthDate   sql.NullTime
	ShowAge     bool
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, upsertProfile,
		arg.UserID,
		arg.DisplayName,
		arg.PhotoUrl,
		arg.IsPublic,
		arg.BirthDate,
		arg.ShowAge,
	)
	return scanProfile(row)
}

// =============================================================================
// Leaderboard
// =============================================================================

// LeaderboardRow is one aggregated leaderboard entry. Only public profiles
// are included; ranking order is decided by the query used.
type LeaderboardRow struct {
	UserID        uuid.UUID
	DisplayName   string
	PhotoUrl      string
	BirthDate     sql.NullTime
	ShowAge       bool
	TotalLengthCm float64
	TotalWeightKg float64
	CatchCount    int64
	LastUpdated   time.Time
}

const leaderboardBase = `
SELECT
	p.user_id,
	p.display_name,
	p.photo_url,
	p.birth_date,
	p.show_age,
	COALESCE(SUM(c.length_cm), 0) AS total_length_cm,
	COALESCE(SUM(c.weight_kg), 0) AS total_weight_kg,
	COUNT(c.id) AS catch_count,
	COALESCE(MAX(c.created_at), p.updated_at) AS last_updated
FROM profiles p
LEFT JOIN catches c ON c.user_id = p.user_id
WHERE p.is_public
GROUP BY p.user_id, p.display_name, p.photo_url, p.birth_date, p.show_age, p.updated_at
`

const getLeaderboardByLength = leaderboardBase + `
ORDER BY total_length_cm DESC, catch_count DESC
LIMIT $1`

const getLeaderboardByWeight = leaderboardBase + `
ORDER BY total_weight_kg DESC, catch_count DESC
LIMIT $1`

const getLeaderboardByCount = leaderboardBase + `
ORDER BY catch_count DESC, total_length_cm DESC
LIMIT $1`

func (q *Queries) queryLeaderboard(ctx context.Context, query string, limit int32) ([]LeaderboardRow, error) {
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(
			&r.UserID,
			&r.DisplayName,
			&r.PhotoUrl,
			&r.BirthDate,
			&r.ShowAge,
			&r.TotalLengthCm,
			&r.TotalWeightKg,
			&r.CatchCount,
			&r.LastUpdated,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetLeaderboardByLength returns public anglers ranked by cumulative length.
func (q *Queries) GetLeaderboardByLength(ctx context.Context, limit int32) ([]LeaderboardRow, error) {
	return q.queryLeaderboard(ctx, getLeaderboardByLength, limit)
}

// GetLeaderboardByWeight returns public anglers ranked by cumulative weight.
func (q *Queries) GetLeaderboardByWeight(ctx context.Context, limit int32) ([]LeaderboardRow, error) {
	return q.queryLeaderboard(ctx, getLeaderboardByWeight, limit)
}

// GetLeaderboardByCount returns public anglers ranked by number of catches.
func (q *Queries) GetLeaderboardByCount(ctx context.Context, limit int32) ([]LeaderboardRow, error) {
	return q.queryLeaderboard(ctx, getLeaderboardByCount, limit)
}
