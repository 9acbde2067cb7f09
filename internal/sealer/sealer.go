// Package sealer encrypts chat content at rest using Fernet tokens.
package sealer

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrInvalidToken is returned by Open when a token fails verification.
var ErrInvalidToken = errors.New("invalid or tampered token")

// Sealer seals plaintext for storage and opens it on read.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// New returns a Fernet sealer for the given URL-safe base64 key. An empty
// key yields a pass-through sealer that stores content as-is.
func New(key string) (Sealer, error) {
	if key == "" {
		return Plain{}, nil
	}
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("decoding encryption key: %w", err)
	}
	return &fernetSealer{keys: []*fernet.Key{k}}, nil
}

// GenerateKey returns a fresh encoded key suitable for ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return k.Encode(), nil
}

// Plain is the identity sealer.
type Plain struct{}

func (Plain) Seal(s string) (string, error) { return s, nil }
func (Plain) Open(s string) (string, error) { return s, nil }

type fernetSealer struct {
	keys []*fernet.Key
}

func (f *fernetSealer) Seal(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), f.keys[0])
	if err != nil {
		return "", fmt.Errorf("sealing: %w", err)
	}
	return string(tok), nil
}

// Open verifies and decrypts a token. Tokens never expire.
func (f *fernetSealer) Open(sealed string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(sealed), -1, f.keys)
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}
