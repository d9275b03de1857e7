package connector

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/cryptox"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/envelope"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/proof"
)

// decryptAsServer opens an envelope the way the backend does: derive the
// shared secret from the envelope's dapp public key and the server secret.
func decryptAsServer(t *testing.T, server *cryptox.KeyPair, e *envelope.Envelope) envelope.Payload {
	t.Helper()

	d, err := e.Decode()
	require.NoError(t, err)

	shared, err := cryptox.DeriveSharedSecret(d.DappPublicKey, server.Secret[:])
	require.NoError(t, err)

	var p envelope.Payload
	require.NoError(t, cryptox.Decrypt(d.Ciphertext, d.Nonce, shared, &p))
	return p
}

func TestConnect_ServerCanOpenAndVerify(t *testing.T) {
	server, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	w, err := NewWallet()
	require.NoError(t, err)

	c, err := New(server.Public[:])
	require.NoError(t, err)

	e, err := c.Connect(w, "1001", time.Now())
	require.NoError(t, err)

	p := decryptAsServer(t, server, e)
	require.NoError(t, p.Validate())
	assert.Equal(t, envelope.ActionConnect, p.Action)
	assert.Equal(t, w.Address(), p.PublicKey)
	assert.Equal(t, c.SessionID(), p.Session)

	userID, _, err := proof.ParseChallenge(p.Message)
	require.NoError(t, err)
	assert.Equal(t, "1001", userID)

	pub, err := base58.Decode(p.PublicKey)
	require.NoError(t, err)
	sig, err := base58.Decode(p.Signature)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, []byte(p.Message), sig))
}

func TestConnectors_FreshKeyMaterialPerAttempt(t *testing.T) {
	server, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	c1, err := New(server.Public[:])
	require.NoError(t, err)
	c2, err := New(server.Public[:])
	require.NoError(t, err)

	assert.NotEqual(t, c1.EncryptionPublicKey(), c2.EncryptionPublicKey())
	assert.NotEqual(t, c1.SessionID(), c2.SessionID())
}

func TestDisconnectAndTransactionEnvelopes(t *testing.T) {
	server, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	c, err := New(server.Public[:])
	require.NoError(t, err)

	e, err := c.Disconnect()
	require.NoError(t, err)
	p := decryptAsServer(t, server, e)
	require.NoError(t, p.Validate())
	assert.Equal(t, envelope.ActionDisconnect, p.Action)

	tx := []byte{0xde, 0xad, 0xbe, 0xef}
	e, err = c.SignAndSendTransaction(tx)
	require.NoError(t, err)
	p = decryptAsServer(t, server, e)
	require.NoError(t, p.Validate())
	assert.Equal(t, envelope.ActionSignAndSendTransaction, p.Action)
	assert.Equal(t, c.SessionID(), p.Session)

	decoded, err := envelope.DecodeBytes(p.Transaction)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)
}

func TestNew_RejectsBadServerKey(t *testing.T) {
	_, err := New([]byte("not-a-key"))
	assert.Error(t, err)
}
