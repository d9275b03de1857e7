// Package cryptox implements the cryptographic half of the wallet-linking
// handshake: ephemeral X25519 key agreement and an authenticated-encryption
// envelope (NaCl box) over the derived shared secret. It is used symmetrically
// by the browser connector and the backend.
package cryptox

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

const (
	// KeySize is the length of public keys, secret keys and shared secrets.
	KeySize = 32
	// NonceSize is the length of the per-message box nonce.
	NonceSize = 24
)

// KeyPair is an ephemeral X25519 key pair. It is regenerated per handshake
// attempt and must be discarded when the handshake session ends.
type KeyPair struct {
	Public [KeySize]byte
	Secret [KeySize]byte
}

// SharedSecret is the precomputed box key derived from one party's secret key
// and the peer's public key. It is as sensitive as a private key and must
// never be transmitted or outlive its handshake session.
type SharedSecret [KeySize]byte

// GenerateKeyPair returns a fresh uniformly random X25519 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, sec, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	return &KeyPair{Public: *pub, Secret: *sec}, nil
}

// DeriveSharedSecret computes the symmetric box secret from a peer's public
// key and our own secret key:
//
//	DeriveSharedSecret(Apub, Bsec) == DeriveSharedSecret(Bpub, Asec)
//
// Malformed key material (wrong length, or a degenerate point that would
// yield an all-zero contribution) is a hard reject with ErrInvalidKeyMaterial.
func DeriveSharedSecret(peerPublic, ownSecret []byte) (*SharedSecret, error) {
	if len(peerPublic) != KeySize || len(ownSecret) != KeySize {
		return nil, common.ErrInvalidKeyMaterial
	}

	// X25519 rejects low-order peer points; box.Precompute alone would not.
	if _, err := curve25519.X25519(ownSecret, peerPublic); err != nil {
		return nil, common.ErrInvalidKeyMaterial
	}

	var pub, sec [KeySize]byte
	copy(pub[:], peerPublic)
	copy(sec[:], ownSecret)

	var shared SharedSecret
	box.Precompute((*[KeySize]byte)(&shared), &pub, &sec)
	return &shared, nil
}
