package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/go-taskhive/database"
)

// newMockDB swaps the process-wide handle for a sqlmock-backed one.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	database.DB = sqlx.NewDb(db, "pgx")
	return mock
}
