package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTicketTTL is how long a verified-OTP ticket stays usable.
const DefaultTicketTTL = 10 * time.Minute

// Ticket purposes.
const (
	PurposePasswordReset = "password_reset"
)

// TicketClaims are the claims of a short-lived ticket handed out after an
// OTP check succeeds. Binding ties the ticket to a piece of server state (for
// password resets, the fingerprint of the current password hash) so the
// ticket stops verifying once that state changes.
type TicketClaims struct {
	jwt.RegisteredClaims

	Purpose string `json:"purpose"`
	Binding string `json:"bnd,omitempty"`
}

// NewTicketClaims builds minimally-correct ticket claims.
func NewTicketClaims(subject, purpose, binding, issuer string, ttl time.Duration, now time.Time) TicketClaims {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return TicketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Purpose: purpose,
		Binding: binding,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *TicketClaims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidatePurpose rejects tickets minted for a different flow.
func (c *TicketClaims) ValidatePurpose(expected string) error {
	if c.Purpose != expected {
		return ErrPurpose
	}
	return nil
}

// ValidateExpiry ensures the ticket hasn't expired (exp) and isn't before nbf.
func (c *TicketClaims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
