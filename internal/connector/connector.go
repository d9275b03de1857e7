package connector

import (
	"crypto/rand"
	"time"

	"github.com/mr-tron/base58"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/cryptox"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/envelope"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/proof"
)

// Connector drives one wallet-link attempt. It generates a fresh ephemeral
// key pair, derives the shared secret against the backend's published
// encryption public key, and seals action payloads into wire envelopes.
type Connector struct {
	dapp    *cryptox.KeyPair
	shared  *cryptox.SharedSecret
	session string
}

// New starts a link attempt against the backend's encryption public key.
// A new Connector must be created per attempt; key material is never reused.
func New(serverEncryptionPublicKey []byte) (*Connector, error) {
	dapp, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	shared, err := cryptox.DeriveSharedSecret(serverEncryptionPublicKey, dapp.Secret[:])
	if err != nil {
		return nil, err
	}

	sessionID := make([]byte, 32)
	if _, err := rand.Read(sessionID); err != nil {
		return nil, err
	}

	return &Connector{
		dapp:    dapp,
		shared:  shared,
		session: base58.Encode(sessionID),
	}, nil
}

// SessionID returns the random session token generated for this attempt.
func (c *Connector) SessionID() string {
	return c.session
}

// EncryptionPublicKey returns the connector's ephemeral public key as it
// appears in the envelope's dapp_encryption_public_key field.
func (c *Connector) EncryptionPublicKey() []byte {
	return c.dapp.Public[:]
}

// Connect builds the encrypted connect envelope: the wallet signs a fresh
// challenge for userID and the proof travels inside the sealed payload.
func (c *Connector) Connect(w *Wallet, userID string, now time.Time) (*envelope.Envelope, error) {
	message := proof.BuildChallenge(userID, now)
	signature := w.SignMessage(message)

	p := envelope.Payload{
		Action:    envelope.ActionConnect,
		PublicKey: w.Address(),
		Signature: base58.Encode(signature),
		Message:   message,
		Session:   c.session,
	}
	return c.seal(p)
}

// Disconnect builds the encrypted disconnect envelope. The backend tears the
// session down; this connector's key material is dead afterwards.
func (c *Connector) Disconnect() (*envelope.Envelope, error) {
	return c.seal(envelope.Payload{Action: envelope.ActionDisconnect})
}

// SignAndSendTransaction wraps an already wallet-signed, serialized
// transaction for submission through the backend. The bytes are opaque here.
func (c *Connector) SignAndSendTransaction(serializedTx []byte) (*envelope.Envelope, error) {
	return c.seal(envelope.Payload{
		Action:      envelope.ActionSignAndSendTransaction,
		Session:     c.session,
		Transaction: base58.Encode(serializedTx),
	})
}

func (c *Connector) seal(p envelope.Payload) (*envelope.Envelope, error) {
	ciphertext, nonce, err := cryptox.Encrypt(p, c.shared)
	if err != nil {
		return nil, err
	}
	return envelope.Seal(c.dapp.Public[:], nonce, ciphertext), nil
}
