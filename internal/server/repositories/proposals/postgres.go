package proposals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/dbx"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO proposals (id, title, description, creator_id, voting_period_hours, created_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.CreatorID, p.VotingPeriodHours, p.CreatedAt, p.Status)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	query :=
		`SELECT id, title, description, creator_id, voting_period_hours, created_at, status FROM proposals
		 WHERE id = $1
		 `

	p := &models.Proposal{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.CreatorID, &p.VotingPeriodHours, &p.CreatedAt, &p.Status)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, now time.Time) ([]models.Proposal, error) {
	query :=
		`SELECT id, title, description, creator_id, voting_period_hours, created_at, status FROM proposals
		 WHERE status = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, models.ProposalStatusActive)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatorID, &p.VotingPeriodHours, &p.CreatedAt, &p.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		// Lazy close: an elapsed voting period reads as closed without a sweeper.
		if p.EffectiveStatus(now) == models.ProposalStatusActive {
			out = append(out, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
