package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordAlgorithm names the scheme new hashes are produced with.
type PasswordAlgorithm string

const (
	AlgorithmArgon2id PasswordAlgorithm = "argon2id"
	AlgorithmBcrypt   PasswordAlgorithm = "bcrypt"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// DefaultBcryptCost matches the cost used by the accounts this service
// inherited, so old and new bcrypt hashes verify at the same speed.
const DefaultBcryptCost = 10

var (
	ErrPasswordMismatch  = errors.New("cryptox: password does not match")
	ErrUnknownHashFormat = errors.New("cryptox: unknown password hash format")

	// ErrPasswordTooLong is returned by Hash when bcrypt is selected and the
	// password is longer than 72 bytes.
	ErrPasswordTooLong = errors.New("cryptox: password too long for bcrypt")
)

// PasswordHasher hashes and verifies passwords. Verification dispatches on the
// stored hash prefix, so switching Algorithm never locks out existing users.
//
// The pepper only applies to argon2id. Bcrypt truncates its input at 72 bytes
// and imported bcrypt hashes were never peppered.
type PasswordHasher struct {
	Algorithm  PasswordAlgorithm
	Pepper     string
	BcryptCost int
}

// ParsePasswordAlgorithm maps a config value to an algorithm, defaulting to
// argon2id for anything unrecognised.
func ParsePasswordAlgorithm(s string) PasswordAlgorithm {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(AlgorithmBcrypt):
		return AlgorithmBcrypt
	default:
		return AlgorithmArgon2id
	}
}

// Hash returns an encoded hash of password using the configured algorithm.
func (h *PasswordHasher) Hash(password string) (string, error) {
	switch h.Algorithm {
	case AlgorithmBcrypt:
		cost := h.BcryptCost
		if cost == 0 {
			cost = DefaultBcryptCost
		}
		out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		if err != nil {
			return "", fmt.Errorf("cryptox: bcrypt: %w", err)
		}
		return string(out), nil
	default:
		return h.hashArgon2id(password)
	}
}

// Verify compares password against an encoded hash produced by either
// algorithm. It returns ErrPasswordMismatch when the password is wrong.
func (h *PasswordHasher) Verify(password, encoded string) error {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return h.verifyArgon2id(password, encoded)
	case strings.HasPrefix(encoded, "$2a$"),
		strings.HasPrefix(encoded, "$2b$"),
		strings.HasPrefix(encoded, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	default:
		return ErrUnknownHashFormat
	}
}

// hashArgon2id generates a PHC-format Argon2id hash string including salt and parameters.
func (h *PasswordHasher) hashArgon2id(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password+h.Pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func (h *PasswordHasher) verifyArgon2id(password, encoded string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - If this overflows we have bigger problems
	)
	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}
