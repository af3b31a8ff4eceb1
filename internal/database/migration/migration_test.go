package migration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"baureport/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionSteps(t *testing.T) {
	steps := partitionSteps("regieberichte")
	require.Len(t, steps, 6)

	assert.Contains(t, steps[0].SQL, "CREATE TABLE IF NOT EXISTS regieberichte")
	assert.Contains(t, steps[0].SQL, "report_number  INTEGER     NOT NULL CHECK (report_number > 0)")

	// The numbering namespace is guarded by the composite unique index.
	assert.Contains(t, steps[1].SQL, "CREATE UNIQUE INDEX IF NOT EXISTS uq_regieberichte_client_number")
	assert.Contains(t, steps[1].SQL, "(client_code, report_number)")

	for _, step := range steps {
		assert.Contains(t, step.SQL, "IF NOT EXISTS", "step %s must be idempotent", step.Name)
	}
}

func TestEnsureMigrated(t *testing.T) {
	t.Run("runs every step for every partition", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		total := 0
		for _, docType := range model.AllDocumentTypes {
			for range partitionSteps(docType.TableName()) {
				dbMock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
				total++
			}
		}

		err = EnsureMigrated(context.Background(), db, time.UTC, "localhost")
		require.NoError(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, 18, total)
	})

	t.Run("stops on the first failing step", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
		dbMock.ExpectExec(".*").WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(context.Background(), db, time.UTC, "localhost")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "permission denied"))
	})
}
