package proposals

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:proposals_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS proposals (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		creator_id TEXT NOT NULL,
		voting_period_hours INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM proposals`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_CreateAssignsID(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	p, err := repo.Create(context.Background(), &models.Proposal{
		Title:             "T",
		Description:       "D",
		CreatorID:         "100",
		VotingPeriodHours: 24,
		CreatedAt:         time.Now().UTC(),
		Status:            models.ProposalStatusActive,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, 24, got.VotingPeriodHours)
	assert.Equal(t, models.ProposalStatusActive, got.Status)
}

func TestSQLiteRepository_GetByID_MalformedID(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	// A malformed id reads as absent, never as a storage error.
	_, err := repo.GetByID(context.Background(), "not a real id \x00")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteRepository_ListActive_LazyClose(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Create(ctx, &models.Proposal{
		ID: "fresh", Title: "fresh", Description: "d", CreatorID: "1",
		VotingPeriodHours: 24, CreatedAt: now.Add(-time.Hour), Status: models.ProposalStatusActive,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Proposal{
		ID: "elapsed", Title: "elapsed", Description: "d", CreatorID: "1",
		VotingPeriodHours: 1, CreatedAt: now.Add(-2 * time.Hour), Status: models.ProposalStatusActive,
	})
	require.NoError(t, err)

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].ID)
}
