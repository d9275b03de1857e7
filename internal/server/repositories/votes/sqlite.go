package votes

import (
	"context"
	"fmt"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/dbx"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

// SQLiteRepository is the development-mode twin of PostgresRepository.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, v *models.Vote) error {
	query :=
		`INSERT INTO votes (proposal_id, user_id, vote, weight)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (proposal_id, user_id) DO UPDATE SET vote = excluded.vote, weight = excluded.weight
		 `

	if _, err := r.db.ExecContext(ctx, query, v.ProposalID, v.UserID, v.Vote, v.Weight); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, proposalID string) ([]models.Vote, error) {
	query :=
		`SELECT proposal_id, user_id, vote, weight FROM votes
		 WHERE proposal_id = ?
		 `

	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ProposalID, &v.UserID, &v.Vote, &v.Weight); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
