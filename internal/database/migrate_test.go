package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("access denied")
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnError(boom)
	err = Migrate(db)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "apply schema")
}

func TestSchemaSeedsZones(t *testing.T) {
	require.Contains(t, schema, "INSERT IGNORE INTO zones")
}
