package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// EdDSASigner signs tickets with an Ed25519 key.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewSignerEdDSA loads an Ed25519 private key from PKCS8 PEM bytes. The kid is
// derived from the public key so every replica sharing the key agrees on it.
func NewSignerEdDSA(pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}

	return newEdDSASigner(key), nil
}

// NewEphemeralEdDSA generates an in-memory key. Tickets signed with it die with
// the process, which is acceptable for a single replica.
func NewEphemeralEdDSA() (*EdDSASigner, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate Ed25519 key: %w", err)
	}
	return newEdDSASigner(key), nil
}

// LoadOrCreateEdDSA reads the key at path, creating it when missing. An empty
// path yields an ephemeral signer.
func LoadOrCreateEdDSA(path string) (*EdDSASigner, error) {
	if path == "" {
		return NewEphemeralEdDSA()
	}

	pemKey, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, pemKey, 0600); err != nil {
			return nil, fmt.Errorf("jwtx: write ticket key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("jwtx: read ticket key: %w", err)
	}

	return NewSignerEdDSA(pemKey)
}

func newEdDSASigner(key ed25519.PrivateKey) *EdDSASigner {
	pub := key.Public().(ed25519.PublicKey)
	return &EdDSASigner{
		kid: cryptox.FingerprintToken(string(pub))[:16],
		key: key,
		pub: pub,
	}
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

// PublicKey returns the verification half of the key.
func (s *EdDSASigner) PublicKey() ed25519.PublicKey { return s.pub }

// Sign turns claims into a signed compact JWT.
func (s *EdDSASigner) Sign(claims TicketClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

var _ Signer = (*EdDSASigner)(nil)
