package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func producerContext(userID string) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{
		UserID: userID,
		Role:   models.RoleProducer,
	})
}

func TestAddRowAppendsAndRecalculates(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("COALESCE\\(MAX\\(sort_order\\), 0\\)").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectExec("INSERT INTO rundown_rows").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Recalculation inside the same transaction.
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r1", "b1", 1, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now).
			AddRow("r2", "b1", 2, "STORY", "A2", "A", 90, nil, 0, 0, nil, now, now).
			AddRow("r3", "b1", 3, "STORY", "A3", "A", 90, nil, 0, 0, nil, now, now))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68400, 90, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68490, 180, "r2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68580, 270, "r3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bulletins SET total_est_duration_secs").
		WithArgs(270, nil, 0, 1530, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	row, result, err := svc.AddRow(producerContext("u1"), "b1", RowInput{Slug: "A3"})
	require.NoError(t, err)

	// Appended after the existing rows with the story default duration.
	assert.Equal(t, 3, row.SortOrder)
	assert.Equal(t, models.RowStory, row.RowType)
	assert.Equal(t, models.DefaultStoryDurationSecs, row.EstDurationSecs)
	assert.Equal(t, 270, result.TotalEstDurationSecs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRowRejectedWhenLockedByAnother(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(true, "someone-else"))
	mock.ExpectRollback()

	_, _, err := svc.AddRow(producerContext("u1"), "b1", RowInput{Slug: "A3"})
	assert.ErrorIs(t, err, ErrBulletinLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRowAllowedForLockHolder(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(true, "u1"))
	mock.ExpectQuery("COALESCE\\(MAX\\(sort_order\\), 0\\)").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec("INSERT INTO rundown_rows").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(true, "u1"))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r1", "b1", 1, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68400, 90, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bulletins SET total_est_duration_secs").
		WithArgs(90, nil, 0, 1710, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	row, _, err := svc.AddRow(producerContext("u1"), "b1", RowInput{Slug: "A1"})
	require.NoError(t, err)
	assert.Equal(t, 1, row.SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRowAtPositionShiftsLaterRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	now := time.Now()
	position := 1

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("COALESCE\\(MAX\\(sort_order\\), 0\\)").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectExec("UPDATE rundown_rows SET sort_order = sort_order \\+ 1").
		WithArgs("b1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rundown_rows").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("new", "b1", 1, "COMMERCIAL", "BREAK", "A", 180, nil, 0, 0, nil, now, now).
			AddRow("r1", "b1", 2, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68400, 180, "new").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68580, 270, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bulletins SET total_est_duration_secs").
		WithArgs(90, nil, 180, 1530, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	est := 180
	row, _, err := svc.AddRow(producerContext("u1"), "b1", RowInput{
		RowType:         models.RowCommercial,
		Slug:            "BREAK",
		EstDurationSecs: &est,
		Position:        &position,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, row.SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveRowValidatesPosition(t *testing.T) {
	repo, _ := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	_, err := svc.MoveRow(producerContext("u1"), "b1", "r1", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddRowRejectsUnknownType(t *testing.T) {
	repo, _ := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	_, _, err := svc.AddRow(producerContext("u1"), "b1", RowInput{RowType: "JINGLE"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoveRowResequencesAndRecalculates(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r1", "b1", 1, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now).
			AddRow("r2", "b1", 2, "STORY", "A2", "A", 120, nil, 0, 0, nil, now, now).
			AddRow("r3", "b1", 3, "STORY", "A3", "A", 60, nil, 0, 0, nil, now, now))

	// Park then renumber 1..n with r3 spliced to the front.
	mock.ExpectExec("sort_order = sort_order \\+ \\?").
		WithArgs(100000, "b1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("SET sort_order = \\? WHERE row_id").
		WithArgs(1, "r3", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET sort_order = \\? WHERE row_id").
		WithArgs(2, "r1", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET sort_order = \\? WHERE row_id").
		WithArgs(3, "r2", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r3", "b1", 1, "STORY", "A3", "A", 60, nil, 0, 0, nil, now, now).
			AddRow("r1", "b1", 2, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now).
			AddRow("r2", "b1", 3, "STORY", "A2", "A", 120, nil, 0, 0, nil, now, now))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68400, 60, "r3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68460, 150, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68550, 270, "r2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bulletins SET total_est_duration_secs").
		WithArgs(270, nil, 0, 1530, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.MoveRow(producerContext("u1"), "b1", "r3", 1)
	require.NoError(t, err)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, "r3", result.Rows[0].RowID)
	assert.Equal(t, 68400, result.Rows[0].FrontTimeSecs)
	assert.Equal(t, 270, result.Rows[2].CumeTimeSecs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRowTombstonesAndRenumbers(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows WHERE row_id").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r1", "b1", 1, "STORY", "A1", "A", 90, nil, 0, 0, nil, now, now))

	// No tombstones yet, so the deleted row parks on -1.
	mock.ExpectQuery("COALESCE\\(MIN\\(sort_order\\), 0\\)").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(1))
	mock.ExpectExec("SET deleted_at = NOW\\(\\), sort_order = \\?").
		WithArgs(-1, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r2", "b1", 2, "STORY", "A2", "A", 120, nil, 0, 0, nil, now, now))
	mock.ExpectExec("sort_order = sort_order \\+ \\?").
		WithArgs(100000, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET sort_order = \\? WHERE row_id").
		WithArgs(1, "r2", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r2", "b1", 1, "STORY", "A2", "A", 120, nil, 0, 0, nil, now, now))
	mock.ExpectExec("UPDATE rundown_rows SET front_time_secs").
		WithArgs(68400, 120, "r2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bulletins SET total_est_duration_secs").
		WithArgs(120, nil, 0, 1680, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.DeleteRow(producerContext("u1"), "b1", "r1")
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "r2", result.Rows[0].RowID)
	assert.Equal(t, 120, result.TotalEstDurationSecs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreRowPastRetentionWindow(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewRundownService(repo, NewTimingService(repo), 72*time.Hour)

	now := time.Now()
	deletedAt := now.Add(-96 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("b1").
		WillReturnRows(bulletinRow(false, nil))
	mock.ExpectQuery("FROM rundown_rows WHERE row_id").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(rowCols).
			AddRow("r1", "b1", -1, "STORY", "A1", "A", 90, nil, 0, 0, deletedAt, now, now))
	mock.ExpectQuery("COALESCE\\(MAX\\(sort_order\\), 0\\)").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))

	// The restore statement matches nothing: the row fell out of the
	// retention window while waiting for the purge.
	mock.ExpectExec("SET deleted_at = NULL, sort_order = \\?").
		WithArgs(1, "r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.RestoreRow(producerContext("u1"), "b1", "r1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
