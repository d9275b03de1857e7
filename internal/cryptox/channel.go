package cryptox

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

// Encrypt serializes the given payload to JSON and seals it with the shared
// secret under a fresh random 24-byte nonce. The ciphertext and nonce are
// returned separately; a nonce must never be reused under the same secret.
func Encrypt(payload any, secret *SharedSecret) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("payload serialization: %w", err)
	}

	var n [NonceSize]byte
	if _, err := rand.Read(n[:]); err != nil {
		return nil, nil, err
	}

	ciphertext = box.SealAfterPrecomputation(nil, plaintext, &n, (*[KeySize]byte)(secret))
	return ciphertext, n[:], nil
}

// Decrypt opens the ciphertext under (nonce, secret) and unmarshals the
// plaintext JSON into v.
//
// Any authentication failure — wrong secret, tampered ciphertext, mismatched
// nonce — yields the same ErrDecryptionFailed. There is no partial success
// path and the error deliberately carries no cause.
func Decrypt(ciphertext, nonce []byte, secret *SharedSecret, v any) error {
	if len(nonce) != NonceSize {
		return common.ErrDecryptionFailed
	}

	var n [NonceSize]byte
	copy(n[:], nonce)

	plaintext, ok := box.OpenAfterPrecomputation(nil, ciphertext, &n, (*[KeySize]byte)(secret))
	if !ok {
		return common.ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return common.ErrDecryptionFailed
	}
	return nil
}
