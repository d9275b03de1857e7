package proof

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	return NewVerifier(DefaultFreshnessWindow, NewMemoryReplayCache(), testLogger())
}

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, sec, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, sec
}

func TestBuildParseChallenge(t *testing.T) {
	ts := time.Now().Truncate(time.Millisecond)
	msg := BuildChallenge("42", ts)

	userID, parsed, err := ParseChallenge(msg)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
	assert.True(t, parsed.Equal(ts))
}

func TestParseChallenge_Malformed(t *testing.T) {
	tests := []string{
		"",
		"hello world",
		"GovernanceBot Wallet Link | user=42",
		"OtherApp | user=42 | ts=100",
		"GovernanceBot Wallet Link | user= | ts=100",
		"GovernanceBot Wallet Link | user=42 | ts=soon",
	}
	for _, msg := range tests {
		_, _, err := ParseChallenge(msg)
		assert.Error(t, err, "message %q", msg)
	}
}

func TestVerify_ValidSignature(t *testing.T) {
	v := newTestVerifier(t)
	pub, sec := testKeys(t)

	msg := BuildChallenge("7", time.Now())
	sig := ed25519.Sign(sec, []byte(msg))

	assert.True(t, v.Verify(context.Background(), pub, sig, msg))
}

func TestVerify_BitFlips(t *testing.T) {
	v := newTestVerifier(t)
	pub, sec := testKeys(t)

	msg := BuildChallenge("7", time.Now())
	sig := ed25519.Sign(sec, []byte(msg))

	t.Run("mutated message", func(t *testing.T) {
		mutated := []byte(msg)
		mutated[0] ^= 0x01
		assert.False(t, v.Verify(context.Background(), pub, sig, string(mutated)))
	})

	t.Run("mutated signature", func(t *testing.T) {
		mutated := append([]byte(nil), sig...)
		mutated[10] ^= 0x01
		assert.False(t, v.Verify(context.Background(), pub, mutated, msg))
	})
}

func TestVerify_MalformedMaterial(t *testing.T) {
	v := newTestVerifier(t)
	pub, sec := testKeys(t)
	msg := BuildChallenge("7", time.Now())
	sig := ed25519.Sign(sec, []byte(msg))

	assert.False(t, v.Verify(context.Background(), pub[:16], sig, msg))
	assert.False(t, v.Verify(context.Background(), pub, sig[:30], msg))
	assert.False(t, v.Verify(context.Background(), nil, nil, msg))
}

func TestVerify_StaleChallenge(t *testing.T) {
	v := newTestVerifier(t)
	pub, sec := testKeys(t)

	old := BuildChallenge("7", time.Now().Add(-DefaultFreshnessWindow-time.Minute))
	sig := ed25519.Sign(sec, []byte(old))
	assert.False(t, v.Verify(context.Background(), pub, sig, old))

	future := BuildChallenge("7", time.Now().Add(DefaultFreshnessWindow+time.Minute))
	sig = ed25519.Sign(sec, []byte(future))
	assert.False(t, v.Verify(context.Background(), pub, sig, future))
}

func TestVerify_Replay(t *testing.T) {
	v := newTestVerifier(t)
	pub, sec := testKeys(t)

	msg := BuildChallenge("7", time.Now())
	sig := ed25519.Sign(sec, []byte(msg))

	require.True(t, v.Verify(context.Background(), pub, sig, msg))
	assert.False(t, v.Verify(context.Background(), pub, sig, msg), "same tuple must not verify twice")
}

func TestMemoryReplayCache_TTL(t *testing.T) {
	c := NewMemoryReplayCache()
	base := time.Now()
	c.now = func() time.Time { return base }

	seen, err := c.Seen(context.Background(), "pk", "msg", time.Minute)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = c.Seen(context.Background(), "pk", "msg", time.Minute)
	require.NoError(t, err)
	assert.True(t, seen)

	// After the TTL the entry is swept and the tuple reads as unseen; the
	// verifier's freshness window rejects it independently by then.
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	seen, err = c.Seen(context.Background(), "pk", "msg", time.Minute)
	require.NoError(t, err)
	assert.False(t, seen)
}
