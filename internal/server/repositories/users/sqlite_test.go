package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:users_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		wallet_address TEXT NOT NULL DEFAULT ''
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM users`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_GetByIdentity_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.GetByIdentity(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteRepository_UpsertWallet_CreatesAndOverwrites(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	// Upsert must not require a prior record.
	require.NoError(t, repo.UpsertWallet(ctx, "100", "addr-1"))

	identity, err := repo.GetByIdentity(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "addr-1", identity.WalletAddress)
	assert.True(t, identity.Linked())

	// A second link replaces the address, never duplicates the row.
	require.NoError(t, repo.UpsertWallet(ctx, "100", "addr-2"))

	identity, err = repo.GetByIdentity(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "addr-2", identity.WalletAddress)
}

func TestSQLiteRepository_UpsertWallet_ClearAddress(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertWallet(ctx, "200", "addr"))
	require.NoError(t, repo.UpsertWallet(ctx, "200", ""))

	identity, err := repo.GetByIdentity(ctx, "200")
	require.NoError(t, err)
	assert.False(t, identity.Linked())
}
