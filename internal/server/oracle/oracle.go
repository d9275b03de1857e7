// Package oracle defines the balance oracle boundary: a live read of the
// governance token balance held by a wallet. The chain RPC client lives
// behind the interface; the rest of the system never sees RPC details.
package oracle

import "context"

// BalanceOracle reads the current governance token balance of a wallet.
// Implementations return an error on lookup failure; mapping failures to a
// zero balance is the authorization gate's job, not the oracle's.
type BalanceOracle interface {
	GetTokenBalance(ctx context.Context, walletAddress string) (int64, error)
}
