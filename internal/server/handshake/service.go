// Package handshake consumes wallet connector envelopes and drives the
// server side of the linking state machine: decrypt, verify ownership,
// persist the wallet, store the session. Validation always precedes
// persistence; a failed attempt never leaves a partial link behind.
package handshake

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/cryptox"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/envelope"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/proof"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/metrics"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/sessions"
)

// DefaultSessionTTL bounds how long a linked session's shared secret stays
// usable for dependent signed actions.
const DefaultSessionTTL = 15 * time.Minute

// TxSubmitter is the external collaborator that broadcasts an already
// wallet-signed transaction. Transaction construction and submission are
// out of scope here; the bytes stay opaque.
type TxSubmitter interface {
	Submit(ctx context.Context, userID string, serializedTx []byte) error
}

// LogSubmitter discards transactions after logging them. It stands in for a
// real chain submitter in deployments that only use the governance flows.
type LogSubmitter struct {
	Logger logging.Logger
}

func (l *LogSubmitter) Submit(ctx context.Context, userID string, serializedTx []byte) error {
	l.Logger.Info(ctx, "transaction received, submission not configured", "user_id", userID, "tx_bytes", len(serializedTx))
	return nil
}

// Outcome reports what an accepted envelope did.
type Outcome struct {
	Action        string
	WalletAddress string // set for connect
}

// Service holds the backend's ephemeral encryption key pair and processes
// envelopes on behalf of identified chat users.
type Service struct {
	keys       *cryptox.KeyPair
	sessions   sessions.Store
	verifier   *proof.Verifier
	users      users.Repository
	submitter  TxSubmitter
	sessionTTL time.Duration
	logger     logging.Logger
	now        func() time.Time
}

func NewService(store sessions.Store, verifier *proof.Verifier, userRepo users.Repository, submitter TxSubmitter, sessionTTL time.Duration, logger logging.Logger) (*Service, error) {
	keys, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		keys:       keys,
		sessions:   store,
		verifier:   verifier,
		users:      userRepo,
		submitter:  submitter,
		sessionTTL: sessionTTL,
		logger:     logger.With("module", "handshake"),
		now:        time.Now,
	}, nil
}

// EncryptionPublicKey is published to connectors so they can derive the
// shared secret for this backend.
func (s *Service) EncryptionPublicKey() []byte {
	return s.keys.Public[:]
}

// HandleEnvelope processes one raw envelope sent on behalf of userID. Any
// failure aborts the attempt without side effects; the caller tells the
// user to retry from the beginning.
func (s *Service) HandleEnvelope(ctx context.Context, userID string, raw []byte) (*Outcome, error) {
	dec, err := envelope.Parse(raw)
	if err != nil {
		metrics.EnvelopesProcessed.WithLabelValues("unknown", "rejected").Inc()
		return nil, err
	}

	shared, err := cryptox.DeriveSharedSecret(dec.DappPublicKey, s.keys.Secret[:])
	if err != nil {
		metrics.EnvelopesProcessed.WithLabelValues("unknown", "rejected").Inc()
		return nil, err
	}

	var p envelope.Payload
	if err := cryptox.Decrypt(dec.Ciphertext, dec.Nonce, shared, &p); err != nil {
		metrics.EnvelopesProcessed.WithLabelValues("unknown", "rejected").Inc()
		return nil, err
	}
	if err := p.Validate(); err != nil {
		metrics.EnvelopesProcessed.WithLabelValues(p.Action, "rejected").Inc()
		return nil, err
	}

	var out *Outcome
	switch p.Action {
	case envelope.ActionConnect:
		out, err = s.handleConnect(ctx, userID, dec, shared, &p)
	case envelope.ActionDisconnect:
		out, err = s.handleDisconnect(ctx, userID)
	case envelope.ActionSignAndSendTransaction:
		out, err = s.handleTransaction(ctx, userID, shared, &p)
	}

	if err != nil {
		metrics.EnvelopesProcessed.WithLabelValues(p.Action, "rejected").Inc()
		return nil, err
	}
	metrics.EnvelopesProcessed.WithLabelValues(p.Action, "ok").Inc()
	return out, nil
}

func (s *Service) handleConnect(ctx context.Context, userID string, dec *envelope.Decoded, shared *cryptox.SharedSecret, p *envelope.Payload) (*Outcome, error) {
	walletPub, err := envelope.DecodeBytes(p.PublicKey)
	if err != nil {
		return nil, err
	}
	signature, err := envelope.DecodeBytes(p.Signature)
	if err != nil {
		return nil, err
	}

	// The challenge must have been issued for this chat user; a proof for
	// someone else's challenge is a replayed or stolen envelope.
	challengeUser, _, err := proof.ParseChallenge(p.Message)
	if err != nil {
		return nil, err
	}
	if challengeUser != userID {
		s.logger.Warn(ctx, "connect rejected: challenge user mismatch", "user_id", userID)
		return nil, common.ErrProofRejected
	}

	if !s.verifier.Verify(ctx, walletPub, signature, p.Message) {
		return nil, common.ErrProofRejected
	}

	// Proof accepted: persist the wallet, then the session.
	if err := s.users.UpsertWallet(ctx, userID, p.PublicKey); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	now := s.now()
	err = s.sessions.Put(ctx, &sessions.Record{
		SessionID:     p.Session,
		UserID:        userID,
		DappPublicKey: dec.DappPublicKey,
		SharedSecret:  *shared,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionTTL),
	})
	if errors.Is(err, common.ErrSessionConflict) {
		// Client-chosen id clashing with another user's session: the
		// client retries with a fresh id, not a server problem.
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	metrics.WalletsLinked.Inc()
	s.logger.Info(ctx, "wallet linked", "user_id", userID, "wallet", p.PublicKey)
	return &Outcome{Action: envelope.ActionConnect, WalletAddress: p.PublicKey}, nil
}

func (s *Service) handleDisconnect(ctx context.Context, userID string) (*Outcome, error) {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	s.logger.Info(ctx, "session disconnected", "user_id", userID)
	return &Outcome{Action: envelope.ActionDisconnect}, nil
}

func (s *Service) handleTransaction(ctx context.Context, userID string, shared *cryptox.SharedSecret, p *envelope.Payload) (*Outcome, error) {
	rec, err := s.sessions.Get(ctx, p.Session)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		// Valid session id presented by the wrong user; do not reveal that
		// the session exists.
		s.logger.Warn(ctx, "transaction rejected: session user mismatch", "user_id", userID)
		return nil, common.ErrSessionNotFound
	}

	// The envelope must come from the key material that connected this
	// session, not merely from someone who can reach the backend key.
	if subtle.ConstantTimeCompare(rec.SharedSecret[:], shared[:]) != 1 {
		s.logger.Warn(ctx, "transaction rejected: session secret mismatch", "user_id", userID)
		return nil, common.ErrSessionNotFound
	}

	tx, err := envelope.DecodeBytes(p.Transaction)
	if err != nil {
		return nil, err
	}

	if err := s.submitter.Submit(ctx, userID, tx); err != nil {
		return nil, err
	}

	// The session completed its dependent signed action; tear it down.
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		s.logger.Error(ctx, "session teardown failed", "user_id", userID, "error", err.Error())
	}

	return &Outcome{Action: envelope.ActionSignAndSendTransaction}, nil
}
