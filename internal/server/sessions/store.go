// Package sessions stores short-lived handshake sessions keyed by session id,
// with expiry as a terminal, timeout-driven transition. Two backends exist:
// an in-process map for single-instance deployments and tests, and a redis
// store whose TTLs make expiry native.
package sessions

import (
	"context"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/cryptox"
)

// Record is one accepted handshake session. The shared secret lives only
// here on the server side; deleting the record destroys the backend's
// decrypt capability for that session.
type Record struct {
	SessionID     string               `json:"session_id"`
	UserID        string               `json:"user_id"`
	DappPublicKey []byte               `json:"dapp_public_key"`
	SharedSecret  cryptox.SharedSecret `json:"shared_secret"`
	CreatedAt     time.Time            `json:"created_at"`
	ExpiresAt     time.Time            `json:"expires_at"`
}

// Expired reports whether the record has passed its expiry.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type Store interface {
	// Put stores the record. Any prior session for the same user is
	// replaced; a user has at most one live handshake session.
	Put(ctx context.Context, r *Record) error

	// Get returns the record for sessionID. Missing sessions yield
	// common.ErrSessionNotFound; expired ones common.ErrSessionExpired
	// (and the record is torn down).
	Get(ctx context.Context, sessionID string) (*Record, error)

	// DeleteByUser tears down the user's session and its secret material.
	// Deleting an absent session is not an error.
	DeleteByUser(ctx context.Context, userID string) error
}
