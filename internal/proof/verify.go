package proof

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
)

// DefaultFreshnessWindow bounds how old (or how far in the future) a
// challenge timestamp may be before the proof is rejected as stale.
const DefaultFreshnessWindow = 5 * time.Minute

// ReplayCache records (publicKey, message) tuples that have already been
// accepted. Entries only need to live as long as the freshness window;
// after that the timestamp check alone rejects the tuple.
type ReplayCache interface {
	// Seen marks the tuple and reports whether it was already present.
	Seen(ctx context.Context, publicKey, message string, ttl time.Duration) (bool, error)
}

// Verifier validates detached ed25519 signatures over challenge messages.
//
// Verify never returns an error to callers: any failure — malformed key or
// signature, bad challenge, stale timestamp, replay — yields false, with the
// cause logged for operators only.
type Verifier struct {
	window time.Duration
	cache  ReplayCache
	logger logging.Logger
	now    func() time.Time
}

func NewVerifier(window time.Duration, cache ReplayCache, logger logging.Logger) *Verifier {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Verifier{
		window: window,
		cache:  cache,
		logger: logger.With("module", "proof"),
		now:    time.Now,
	}
}

// Verify checks that signature is a valid detached ed25519 signature over the
// exact message bytes by publicKey, that the embedded challenge timestamp is
// inside the freshness window, and that the tuple has not been seen before.
func (v *Verifier) Verify(ctx context.Context, publicKey, signature []byte, message string) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		v.logger.Warn(ctx, "proof rejected: bad public key length", "len", len(publicKey))
		return false
	}
	if len(signature) != ed25519.SignatureSize {
		v.logger.Warn(ctx, "proof rejected: bad signature length", "len", len(signature))
		return false
	}

	if !ed25519.Verify(ed25519.PublicKey(publicKey), []byte(message), signature) {
		v.logger.Warn(ctx, "proof rejected: signature verification failed")
		return false
	}

	_, ts, err := ParseChallenge(message)
	if err != nil {
		v.logger.Warn(ctx, "proof rejected: unparseable challenge", "error", err.Error())
		return false
	}

	age := v.now().Sub(ts)
	if age > v.window || age < -v.window {
		v.logger.Warn(ctx, "proof rejected: challenge outside freshness window", "age", age.String())
		return false
	}

	seen, err := v.cache.Seen(ctx, string(publicKey), message, v.window)
	if err != nil {
		// Fail closed: if the replay cache is unreachable we cannot rule
		// out a replay.
		v.logger.Error(ctx, "proof rejected: replay cache error", "error", err.Error())
		return false
	}
	if seen {
		v.logger.Warn(ctx, "proof rejected: challenge replay")
		return false
	}

	return true
}
