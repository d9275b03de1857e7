// Package proposals persists governance proposals.
package proposals

import (
	"context"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

type Repository interface {
	// Create inserts the proposal, assigning a fresh id when none is set,
	// and returns the stored record.
	Create(ctx context.Context, p *models.Proposal) (*models.Proposal, error)

	// GetByID returns the proposal, or common.ErrNotFound for unknown or
	// malformed ids. Storage-layer errors never leak for bad ids.
	GetByID(ctx context.Context, id string) (*models.Proposal, error)

	// ListActive returns proposals whose stored status is active and whose
	// voting period has not elapsed at the given instant.
	ListActive(ctx context.Context, now time.Time) ([]models.Proposal, error)
}
