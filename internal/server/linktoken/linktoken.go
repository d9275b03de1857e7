// Package linktoken issues short-lived signed tokens that bind a wallet-link
// URL to one chat user. The connector page carries the token back on the
// callback so the backend knows which user the envelope belongs to without
// trusting anything in the envelope itself.
package linktoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

// DefaultValidity bounds how long a generated link URL stays usable.
const DefaultValidity = 15 * time.Minute

// Claims binds a chat user id to the token's standard expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// Issuer signs and validates link tokens with a shared HS256 secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secret []byte, validity time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("linktoken: empty secret")
	}
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Issuer{secret: secret, validity: validity}, nil
}

// Generate issues a token for userID valid for the configured window.
func (i *Issuer) Generate(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.validity)),
		},
		UserID: userID,
	})
	return token.SignedString(i.secret)
}

// UserID validates the token and returns the bound chat user id. Expired,
// forged and malformed tokens all map to ErrInvalidInput.
func (i *Issuer) UserID(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("%w: invalid link token", common.ErrInvalidInput)
	}

	return claims.UserID, nil
}
