package repository_test_test

import (
	"testing"
	"time"

	"passkey_api_ms/repository"
	"passkey_api_ms/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestUpdateCounterAndUsage_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	descriptorId := []byte{1, 2, 3, 4}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "credentials" SET`).
		WithArgs(true, sqlmock.AnyArg(), 6, "acme", descriptorId, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := repository.NewCredentialRepository()
	err := repo.UpdateCounterAndUsage(conn, "acme", descriptorId, 5, 6, now, true)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCounterAndUsage_Conflict_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	descriptorId := []byte{1, 2, 3, 4}

	// Zero rows affected: a concurrent authentication already advanced the
	// counter past the expected value.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "credentials" SET`).
		WithArgs(false, sqlmock.AnyArg(), 6, "acme", descriptorId, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := repository.NewCredentialRepository()
	err := repo.UpdateCounterAndUsage(conn, "acme", descriptorId, 5, 6, time.Now().UTC(), false)

	assert.ErrorIs(t, err, repository.ErrCounterConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
