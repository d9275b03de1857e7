package votes

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

func TestPostgresRepository_Record_UsesAtomicUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (proposal_id, user_id) DO UPDATE")).
		WithArgs("p1", "u1", true, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Record(context.Background(), &models.Vote{
		ProposalID: "p1", UserID: "u1", Vote: true, Weight: 42,
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"proposal_id", "user_id", "vote", "weight"}).
		AddRow("p1", "a", true, int64(50)).
		AddRow("p1", "b", false, int64(70))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT proposal_id, user_id, vote, weight FROM votes")).
		WithArgs("p1").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(70), got[1].Weight)
	assert.NoError(t, mock.ExpectationsWereMet())
}
