// Package wizards contains the concrete governance dialogs run on top of the
// dialog engine: creating a proposal and casting a vote. Both are gated on a
// linked wallet holding governance tokens.
package wizards

import (
	"context"
	"errors"
	"fmt"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
)

const msgLinkWalletFirst = "You need to link your wallet first. Use /linkwallet to do so."

// Announcer delivers a message to the shared group channel. Delivery failure
// is logged by the caller, never retried, and never rolls anything back.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// NopAnnouncer drops announcements; used when no group channel is configured.
type NopAnnouncer struct{}

func (NopAnnouncer) Announce(context.Context, string) error { return nil }

// requireHolder resolves the user's linked wallet and checks the token gate.
// It returns the wallet address on success, or a user-facing denial message.
func requireHolder(ctx context.Context, repo users.Repository, g *gate.Gate, userID, holdMsg string) (wallet, deny string, err error) {
	identity, err := repo.GetByIdentity(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return "", msgLinkWalletFirst, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	if !identity.Linked() {
		return "", msgLinkWalletFirst, nil
	}

	authorized, _ := g.IsAuthorized(ctx, identity.WalletAddress)
	if !authorized {
		return "", holdMsg, nil
	}
	return identity.WalletAddress, "", nil
}
