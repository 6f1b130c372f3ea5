package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestDeleteCatch(t *testing.T) {
	q, mock := newMock(t)
	catchID, userID := uuid.New(), uuid.New()

	t.Run("deletes owned catch", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM catches").
			WithArgs(catchID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := q.DeleteCatch(context.Background(), DeleteCatchParams{ID: catchID, UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("returns zero rows for foreign catch", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM catches").
			WithArgs(catchID, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := q.DeleteCatch(context.Background(), DeleteCatchParams{ID: catchID, UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCatchVerdict(t *testing.T) {
	q, mock := newMock(t)
	catchID := uuid.New()

	params := ApplyCatchVerdictParams{
		ID:                catchID,
		EvalSeq:           3,
		ComplianceStatus:  "compliant",
		ComplianceMessage: "Prise conforme.",
		RuleVersion:       "2025.2",
	}

	t.Run("applies current evaluation", func(t *testing.T) {
		mock.ExpectExec("UPDATE catches SET").
			WithArgs(catchID, int64(3), "compliant", "Prise conforme.", "", "2025.2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := q.ApplyCatchVerdict(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("discards stale evaluation", func(t *testing.T) {
		// A newer evaluation bumped eval_seq past 3, so the guard matches no rows.
		mock.ExpectExec("UPDATE catches SET").
			WithArgs(catchID, int64(3), "compliant", "Prise conforme.", "", "2025.2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := q.ApplyCatchVerdict(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBumpCatchEvalSeq(t *testing.T) {
	q, mock := newMock(t)
	catchID := uuid.New()

	mock.ExpectQuery("UPDATE catches SET eval_seq").
		WithArgs(catchID).
		WillReturnRows(sqlmock.NewRows([]string{"eval_seq"}).AddRow(int64(7)))

	seq, err := q.BumpCatchEvalSeq(context.Background(), catchID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueAndDequeueJob(t *testing.T) {
	q, mock := newMock(t)
	jobID := uuid.New()
	now := time.Now()

	jobRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "job_type", "payload", "status", "priority", "attempts",
			"max_attempts", "error_message", "scheduled_at", "started_at",
			"completed_at", "created_at", "updated_at",
		}).AddRow(jobID, "analyze_catch_photo", []byte(`{}`), "pending", int32(10),
			int32(0), int32(3), nil, now, nil, nil, now, now)
	}

	mock.ExpectQuery("INSERT INTO jobs").
		WillReturnRows(jobRows())

	job, err := q.EnqueueJob(context.Background(), EnqueueJobParams{
		JobType:     "analyze_catch_photo",
		Payload:     []byte(`{}`),
		Priority:    10,
		MaxAttempts: 3,
		ScheduledAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, "pending", job.Status)

	mock.ExpectQuery("SELECT (.+) FROM jobs").
		WillReturnRows(jobRows())

	dequeued, err := q.DequeueJob(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.ID, dequeued.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDequeueJobEmptyQueue(t *testing.T) {
	q, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM jobs").
		WillReturnError(sql.ErrNoRows)

	_, err := q.DequeueJob(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJobFailed(t *testing.T) {
	q, mock := newMock(t)
	jobID := uuid.New()

	mock.ExpectExec("UPDATE jobs SET").
		WithArgs(jobID, sql.NullString{String: "boom", Valid: true}, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := q.UpdateJobFailed(context.Background(), UpdateJobFailedParams{
		ID:           jobID,
		ErrorMessage: sql.NullString{String: "boom", Valid: true},
		Permanent:    true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecoverStaleJobs(t *testing.T) {
	q, mock := newMock(t)

	mock.ExpectExec("UPDATE jobs SET").
		WithArgs(float64(300)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := q.RecoverStaleJobs(context.Background(), 300)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeaderboardByLength(t *testing.T) {
	q, mock := newMock(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM profiles p").
		WithArgs(int32(50)).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "display_name", "photo_url", "birth_date", "show_age",
			"total_length_cm", "total_weight_kg", "catch_count", "last_updated",
		}).AddRow(userID, "Marie", "", nil, false, 245.5, 12.3, int64(6), now))

	rows, err := q.GetLeaderboardByLength(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Marie", rows[0].DisplayName)
	assert.Equal(t, 245.5, rows[0].TotalLengthCm)
	assert.Equal(t, int64(6), rows[0].CatchCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
