package history

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestLaundryRecordsEvent(t *testing.T) {
	gormDB, mock := newTestDB(t)
	rec := NewRecorder(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "laundry_events"`)).
		WithArgs(sqlmock.AnyArg(), "washer", "started", "1C", "quick", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec.Laundry(context.Background(), "washer", "started", "1C", "quick")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRecordsEvent(t *testing.T) {
	gormDB, mock := newTestDB(t)
	rec := NewRecorder(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "task_events"`)).
		WithArgs(sqlmock.AnyArg(), "kitchens/lower", "trash", "1C", "completed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec.Task(context.Background(), "kitchens/lower", "trash", "1C", "completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed insert must never surface to the caller; history is
// best-effort by contract.
func TestRecordingSwallowsDatabaseErrors(t *testing.T) {
	gormDB, mock := newTestDB(t)
	rec := NewRecorder(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "laundry_events"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.NotPanics(t, func() {
		rec.Laundry(context.Background(), "dryer", "finished", "", "")
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentLaundry(t *testing.T) {
	gormDB, mock := newTestDB(t)
	rec := NewRecorder(gormDB)

	rows := sqlmock.NewRows([]string{"id", "appliance", "action", "room_id", "program_id"}).
		AddRow("b", "washer", "finished", "", "").
		AddRow("a", "washer", "started", "1C", "quick")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "laundry_events" ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(2).
		WillReturnRows(rows)

	events, err := rec.RecentLaundry(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "finished", events[0].Action)
	assert.Equal(t, "started", events[1].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilRecorderIsInert(t *testing.T) {
	var rec *Recorder

	rec.Laundry(context.Background(), "washer", "started", "1C", "quick")
	rec.Task(context.Background(), "showers/lower", "clean", "1C", "completed")

	events, err := rec.RecentLaundry(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	tasks, err := rec.RecentTasks(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
