package repository_test_test

import (
	"testing"

	"passkey_api_ms/repository"
	"passkey_api_ms/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAliasResolve_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	rows := sqlmock.NewRows([]string{"tenant", "alias", "user_id"}).
		AddRow("acme", "hashed-alias", "alice")

	mock.ExpectQuery(`SELECT \* FROM "aliases" WHERE tenant = \$1 AND alias = \$2`).
		WithArgs("acme", "hashed-alias", 1).
		WillReturnRows(rows)

	repo := repository.NewAliasRepository()
	pointer, err := repo.Resolve(conn, "acme", "hashed-alias")

	assert.NoError(t, err)
	assert.NotNil(t, pointer)
	assert.Equal(t, "alice", pointer.UserId)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAliasResolve_NotFound_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "aliases" WHERE tenant = \$1 AND alias = \$2`).
		WithArgs("acme", "missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"tenant"}))

	repo := repository.NewAliasRepository()
	pointer, err := repo.Resolve(conn, "acme", "missing")

	assert.Nil(t, pointer)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
