package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHasher(alg PasswordAlgorithm) *PasswordHasher {
	return &PasswordHasher{
		Algorithm:  alg,
		Pepper:     "test-pepper",
		BcryptCost: bcrypt.MinCost,
	}
}

func TestHash_Argon2idFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"whitespace password", "   spaces   "},
	}

	h := testHasher(AlgorithmArgon2id)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Contains(t, parts[3], "m=")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h := testHasher(AlgorithmArgon2id)

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", a))
	require.NoError(t, h.Verify("samepassword", b))
}

func TestVerify_WrongPassword(t *testing.T) {
	for _, alg := range []PasswordAlgorithm{AlgorithmArgon2id, AlgorithmBcrypt} {
		t.Run(string(alg), func(t *testing.T) {
			h := testHasher(alg)
			hash, err := h.Hash("correct-password")
			require.NoError(t, err)

			for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", ""} {
				require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch, "password %q", wrong)
			}
		})
	}
}

func TestVerify_PepperIsPartOfArgon2id(t *testing.T) {
	hash, err := testHasher(AlgorithmArgon2id).Hash("secret")
	require.NoError(t, err)

	other := &PasswordHasher{Algorithm: AlgorithmArgon2id, Pepper: "another-pepper"}
	require.ErrorIs(t, other.Verify("secret", hash), ErrPasswordMismatch)
}

func TestVerify_DispatchesOnHashPrefix(t *testing.T) {
	bcryptHash, err := testHasher(AlgorithmBcrypt).Hash("legacy-secret")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(bcryptHash, "$2a$"))

	// An argon2id-configured hasher still accepts bcrypt hashes from before the switch.
	require.NoError(t, testHasher(AlgorithmArgon2id).Verify("legacy-secret", bcryptHash))
}

func TestHash_BcryptDefaultCost(t *testing.T) {
	h := &PasswordHasher{Algorithm: AlgorithmBcrypt}
	hash, err := h.Hash("cost-check")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, DefaultBcryptCost, cost)
}

func TestHash_BcryptRejectsLongPasswords(t *testing.T) {
	h := testHasher(AlgorithmBcrypt)

	_, err := h.Hash(strings.Repeat("a", 100))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	h := testHasher(AlgorithmArgon2id)

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify("test-password", tt.invalidHash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}

	require.ErrorIs(t, h.Verify("x", ""), ErrUnknownHashFormat)
	require.ErrorIs(t, h.Verify("x", "$scrypt$whatever"), ErrUnknownHashFormat)
}

func TestParsePasswordAlgorithm(t *testing.T) {
	require.Equal(t, AlgorithmBcrypt, ParsePasswordAlgorithm("bcrypt"))
	require.Equal(t, AlgorithmBcrypt, ParsePasswordAlgorithm(" BCRYPT "))
	require.Equal(t, AlgorithmArgon2id, ParsePasswordAlgorithm("argon2id"))
	require.Equal(t, AlgorithmArgon2id, ParsePasswordAlgorithm(""))
	require.Equal(t, AlgorithmArgon2id, ParsePasswordAlgorithm("md5"))
}
