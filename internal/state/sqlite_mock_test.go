package state

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStoreWithDB(db, nil), mock
}

func TestSQLiteStore_CreateRunExecError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO runs").
		WillReturnError(errors.New("disk I/O error"))

	err := store.CreateRun(&Run{ID: "run-1", Dir: "/data"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create run")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_RecordFileExecError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO file_results").
		WithArgs("run-1", "/data/a.csv", "/data/a_transposed.csv", 1, 1, 0, "success",
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(0), sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	err := store.RecordFile(&FileRecord{
		RunID:      "run-1",
		InputPath:  "/data/a.csv",
		OutputPath: "/data/a_transposed.csv",
		Rows:       1,
		Cols:       1,
		Status:     FileStatusSuccess,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/data/a.csv")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_CompleteRunNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("UPDATE runs SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CompleteRun("gone", RunStatusCompleted, 1, 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found: gone")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ListRunsQueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM runs").
		WillReturnError(errors.New("no such table: runs"))

	_, err := store.ListRuns(5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}
