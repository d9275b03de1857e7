package votes

import (
	"context"
	"fmt"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/dbx"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, v *models.Vote) error {
	// Single-statement upsert: the uniqueness constraint is the only
	// safeguard against a double vote, so no check-then-act here.
	query :=
		`INSERT INTO votes (proposal_id, user_id, vote, weight)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (proposal_id, user_id) DO UPDATE SET vote = EXCLUDED.vote, weight = EXCLUDED.weight
		 `

	if _, err := r.db.ExecContext(ctx, query, v.ProposalID, v.UserID, v.Vote, v.Weight); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, proposalID string) ([]models.Vote, error) {
	query :=
		`SELECT proposal_id, user_id, vote, weight FROM votes
		 WHERE proposal_id = $1
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
