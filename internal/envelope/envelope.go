// Package envelope defines the wire format exchanged between the browser
// wallet connector and the backend: a JSON envelope whose byte fields are
// base58-encoded, and the payload variants found inside the ciphertext.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/cryptox"
)

// Envelope is the outer wire entity. All three fields are base58 strings;
// Payload is opaque ciphertext. Envelopes are stateless and single-use.
type Envelope struct {
	DappEncryptionPublicKey string `json:"dapp_encryption_public_key"`
	Nonce                   string `json:"nonce"`
	Payload                 string `json:"payload"`
}

// Decoded is an Envelope with its byte fields decoded and length-checked.
type Decoded struct {
	DappPublicKey []byte
	Nonce         []byte
	Ciphertext    []byte
}

// Actions carried inside the decrypted payload.
const (
	ActionConnect                = "connect"
	ActionDisconnect             = "disconnect"
	ActionSignAndSendTransaction = "signAndSendTransaction"
)

// Payload is the decrypted content of an envelope. Which fields are set
// depends on Action; Validate enforces the per-action shape.
type Payload struct {
	Action      string `json:"action"`
	PublicKey   string `json:"public_key,omitempty"`
	Signature   string `json:"signature,omitempty"`
	Message     string `json:"message,omitempty"`
	Session     string `json:"session,omitempty"`
	Transaction string `json:"transaction,omitempty"`
}

// Parse unmarshals a raw envelope and decodes its base58 fields. Malformed
// input is rejected with ErrInvalidInput before any crypto runs.
func Parse(raw []byte) (*Decoded, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope json", common.ErrInvalidInput)
	}
	return e.Decode()
}

// Decode validates and base58-decodes the envelope's byte fields.
func (e *Envelope) Decode() (*Decoded, error) {
	pub, err := base58.Decode(e.DappEncryptionPublicKey)
	if err != nil || len(pub) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: bad dapp encryption public key", common.ErrInvalidInput)
	}
	nonce, err := base58.Decode(e.Nonce)
	if err != nil || len(nonce) != cryptox.NonceSize {
		return nil, fmt.Errorf("%w: bad envelope nonce", common.ErrInvalidInput)
	}
	ciphertext, err := base58.Decode(e.Payload)
	if err != nil || len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: bad envelope payload", common.ErrInvalidInput)
	}
	return &Decoded{DappPublicKey: pub, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Seal builds a wire envelope around an already-encrypted payload.
func Seal(dappPublicKey, nonce, ciphertext []byte) *Envelope {
	return &Envelope{
		DappEncryptionPublicKey: base58.Encode(dappPublicKey),
		Nonce:                   base58.Encode(nonce),
		Payload:                 base58.Encode(ciphertext),
	}
}

// Validate checks the per-action payload shape. It does not verify any
// cryptographic property; that is the handshake service's job.
func (p *Payload) Validate() error {
	switch p.Action {
	case ActionConnect:
		if p.PublicKey == "" || p.Signature == "" || p.Message == "" || p.Session == "" {
			return fmt.Errorf("%w: incomplete connect payload", common.ErrInvalidInput)
		}
	case ActionDisconnect:
		// No additional fields.
	case ActionSignAndSendTransaction:
		if p.Session == "" || p.Transaction == "" {
			return fmt.Errorf("%w: incomplete transaction payload", common.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", common.ErrInvalidInput, p.Action)
	}
	return nil
}

// DecodeBytes is a helper for payload fields that carry base58 byte strings
// (wallet public keys, signatures, serialized transactions).
func DecodeBytes(field string) ([]byte, error) {
	b, err := base58.Decode(field)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base58 field", common.ErrInvalidInput)
	}
	return b, nil
}
