// Package common defines shared sentinel errors used across the connector
// and server layers of the governance bot. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Key agreement / secure channel errors.
	ErrInvalidKeyMaterial = errors.New("invalid key material")

	// ErrDecryptionFailed covers a wrong secret, a tampered ciphertext and a
	// mismatched nonce alike. Callers must not learn which one it was.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrProofRejected covers invalid, stale and replayed wallet signatures.
	ErrProofRejected = errors.New("ownership proof rejected")

	// Handshake session lifecycle errors.
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionConflict = errors.New("session id already in use")

	// Dialog / authorization errors.
	ErrPreconditionUnmet = errors.New("precondition unmet")
	ErrInvalidInput      = errors.New("invalid input")

	// Collaborator errors.
	ErrNotFound          = errors.New("not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrOracleUnavailable = errors.New("oracle unavailable")
)
