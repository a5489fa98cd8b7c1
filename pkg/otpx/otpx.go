// Package otpx issues short numeric one-time codes and compares them against
// stored fingerprints.
//
// Codes are produced by an HOTP computation over a fresh random secret and
// counter, so each code is independent of every other one and nothing but the
// fingerprint needs to be persisted.
package otpx

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	MinDigits     = 4
	MaxDigits     = 8
	DefaultDigits = 4

	DefaultTTL = 5 * time.Minute
)

var ErrDigits = fmt.Errorf("otpx: digits must be between %d and %d", MinDigits, MaxDigits)

// ErrEmptyCode is returned when a blank code is submitted for comparison.
var ErrEmptyCode = errors.New("otpx: empty code")

const secretSize = 20

// Generate returns a random numeric code with the given number of digits.
func Generate(digits int) (string, error) {
	if digits < MinDigits || digits > MaxDigits {
		return "", ErrDigits
	}

	var secret [secretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", fmt.Errorf("otpx: secret: %w", err)
	}
	var counter [8]byte
	if _, err := rand.Read(counter[:]); err != nil {
		return "", fmt.Errorf("otpx: counter: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(
		base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret[:]),
		binary.BigEndian.Uint64(counter[:]),
		hotp.ValidateOpts{
			Digits:    otp.Digits(digits),
			Algorithm: otp.AlgorithmSHA1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("otpx: generate: %w", err)
	}
	return code, nil
}

// Hash returns the value stored in place of code.
func Hash(code string) string {
	return cryptox.FingerprintToken(normalize(code))
}

// Matches compares a submitted code against a stored hash in constant time.
func Matches(code, hash string) bool {
	code = normalize(code)
	if code == "" || hash == "" {
		return false
	}
	return cryptox.FingerprintMatches(code, hash)
}

func normalize(code string) string {
	return strings.TrimSpace(code)
}

// Issued is a freshly generated code together with what gets persisted for it.
type Issued struct {
	Code      string
	Hash      string
	ExpiresAt time.Time
}

// Issue generates a code that expires ttl after now.
func Issue(digits int, ttl time.Duration, now time.Time) (Issued, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	code, err := Generate(digits)
	if err != nil {
		return Issued{}, err
	}
	return Issued{
		Code:      code,
		Hash:      Hash(code),
		ExpiresAt: now.Add(ttl).UTC(),
	}, nil
}
