// Package connector implements the browser wallet connector's half of the
// wallet-linking handshake: ephemeral key agreement with the backend and
// construction of encrypted connect/disconnect/transaction envelopes. The
// wallet's signing key never leaves this side.
package connector

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"
)

// Wallet holds an ed25519 signing key pair standing in for a real browser
// wallet extension. The development connector and the handshake tests use it;
// in production the signature comes from the user's actual wallet.
type Wallet struct {
	pub ed25519.PublicKey
	sec ed25519.PrivateKey
}

func NewWallet() (*Wallet, error) {
	pub, sec, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Wallet{pub: pub, sec: sec}, nil
}

// Address returns the wallet address: the base58-encoded public key.
func (w *Wallet) Address() string {
	return base58.Encode(w.pub)
}

// SignMessage produces a detached signature over the exact message bytes.
func (w *Wallet) SignMessage(message string) []byte {
	return ed25519.Sign(w.sec, []byte(message))
}
