package users

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_GetByIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "wallet_address"}).AddRow("100", "addr-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, wallet_address FROM users")).
		WithArgs("100").
		WillReturnRows(rows)

	identity, err := repo.GetByIdentity(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "addr-1", identity.WalletAddress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpsertWallet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (user_id, wallet_address)")).
		WithArgs("100", "addr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertWallet(context.Background(), "100", "addr-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpsertWallet_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("100", "addr-1").
		WillReturnError(errors.New("connection refused"))

	err = repo.UpsertWallet(context.Background(), "100", "addr-1")
	assert.Error(t, err)
}
