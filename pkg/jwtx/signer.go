package jwtx

import "errors"

// Signer mints signed tickets.
type Signer interface {
	Alg() string
	KID() string
	Sign(TicketClaims) (string, error)
}

// Verifier validates a ticket for one purpose and returns its claims.
type Verifier interface {
	Verify(token, purpose string) (*TicketClaims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrPurpose     = errors.New("jwtx: purpose mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)
