// Package users persists wallet identities keyed by chat user id.
package users

import (
	"context"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

type Repository interface {
	// GetByIdentity returns the identity for userID, or common.ErrNotFound
	// if no link attempt has ever been made for that user.
	GetByIdentity(ctx context.Context, userID string) (*models.WalletIdentity, error)

	// UpsertWallet sets the wallet address for userID, creating the record
	// if needed. At most one address per user; a later link overwrites.
	UpsertWallet(ctx context.Context, userID, walletAddress string) error
}
