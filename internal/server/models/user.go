// Package models holds the server-side record types persisted through the
// governance store and the session store.
package models

// WalletIdentity binds a chat user to at most one wallet address. Records are
// created implicitly on the first link attempt; the address is only ever set
// after a successful ownership proof and is never auto-expired.
type WalletIdentity struct {
	UserID        string
	WalletAddress string
}

// Linked reports whether the identity has a wallet attached.
func (w *WalletIdentity) Linked() bool {
	return w != nil && w.WalletAddress != ""
}
