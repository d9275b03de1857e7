// Package votes persists weighted votes with a (proposal, user) uniqueness
// constraint enforced by the storage engine.
package votes

import (
	"context"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

type Repository interface {
	// Record upserts the vote atomically on (ProposalID, UserID):
	// concurrent submissions from the same user collapse into one row,
	// last write wins.
	Record(ctx context.Context, v *models.Vote) error

	// List returns all votes cast on a proposal.
	List(ctx context.Context, proposalID string) ([]models.Vote, error)
}
