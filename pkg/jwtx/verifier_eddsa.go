package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates tickets signed by a single Ed25519 key.
type EdDSAVerifier struct {
	kid    string
	pub    ed25519.PublicKey
	issuer string

	// Now is the clock used for exp/nbf checks. Defaults to time.Now.
	Now func() time.Time
}

// NewVerifierEdDSA creates a verifier for tickets minted by signer.
func NewVerifierEdDSA(signer *EdDSASigner, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{
		kid:    signer.KID(),
		pub:    signer.PublicKey(),
		issuer: issuer,
	}
}

// Verify validates the token string for purpose and returns its claims.
func (v *EdDSAVerifier) Verify(tokenStr, purpose string) (*TicketClaims, error) {
	// exp/nbf are checked below against the injectable clock instead.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &TicketClaims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != v.kid {
			return nil, ErrUnknownKID
		}
		return v.pub, nil
	})
	if err != nil {
		if errors.Is(err, ErrUnknownKID) {
			return nil, ErrUnknownKID
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidatePurpose(purpose); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(v.now()); err != nil {
		return nil, err
	}

	return claims, nil
}

func (v *EdDSAVerifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

var _ Verifier = (*EdDSAVerifier)(nil)
