package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var poolCols = []string{
	"story_id", "slug", "title", "est_duration_secs", "status",
	"assigned_row_id", "created_by", "created_at", "updated_at",
}

func poolStoryRow(status models.PoolStoryStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(poolCols).AddRow(
		"s1", "EXCLUSIVE", "Harbour exclusive", 75, string(status),
		nil, "rep1", now, now,
	)
}

func TestAssignPoolStoryAppendsOrderedRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewPoolService(repo, NewTimingService(repo))

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM pool_stories").
		WithArgs("s1").
		WillReturnRows(poolStoryRow(models.PoolAvailable))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("COALESCE\\(MAX\\(sort_order\\), 0\\)").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectExec("INSERT INTO rundown_rows").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pool_stories SET status").
		WithArgs("ASSIGNED", sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r1", "b1", 1, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now).
			AddRow("r2", "b1", 2, "STORY", "A2", "A", 90, nil, 0, 0, nil, now, now).
			AddRow("p1", "b1", 3, "STORY", "EXCLUSIVE", "", 75, nil, 0, 0, nil, now, now))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68400, 90, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68490, 180, "r2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68580, 255, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bulletins SET total_est_duration_secs").
		WithArgs(255, nil, 0, 1545, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	row, result, err := svc.Assign(producerContext("u1"), "s1", "b1", nil)
	require.NoError(t, err)

	// The story lands at the end of the rundown carrying its pool estimate.
	assert.Equal(t, 3, row.SortOrder)
	assert.Equal(t, models.RowStory, row.RowType)
	assert.Equal(t, "EXCLUSIVE", row.Slug)
	assert.Equal(t, 75, row.EstDurationSecs)
	assert.Equal(t, 255, result.TotalEstDurationSecs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignUnavailableStoryRejected(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewPoolService(repo, NewTimingService(repo))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pool_stories").
		WithArgs("s1").
		WillReturnRows(poolStoryRow(models.PoolAssigned))
	mock.ExpectRollback()

	_, _, err := svc.Assign(producerContext("u1"), "s1", "b1", nil)
	assert.ErrorIs(t, err, ErrStoryUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignLockedBulletinRejected(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewPoolService(repo, NewTimingService(repo))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pool_stories").
		WithArgs("s1").
		WillReturnRows(poolStoryRow(models.PoolAvailable))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(true, "someone-else"))
	mock.ExpectRollback()

	_, _, err := svc.Assign(producerContext("u1"), "s1", "b1", nil)
	assert.ErrorIs(t, err, ErrBulletinLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
