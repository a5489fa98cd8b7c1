package jwtx_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/aussiebroadwan/onboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "onboard-test"

func TestEdDSASignAndVerify(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(pemKey)
	require.NoError(t, err)
	require.Equal(t, "EdDSA", signer.Alg())
	require.Len(t, signer.KID(), 16)

	now := time.Now().UTC()
	claims := jwtx.NewTicketClaims("user-456", jwtx.PurposePasswordReset, "binding-1", exampleIssuer, 5*time.Minute, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verifier := jwtx.NewVerifierEdDSA(signer, exampleIssuer)
	parsed, err := verifier.Verify(token, jwtx.PurposePasswordReset)
	require.NoError(t, err)

	require.Equal(t, "user-456", parsed.Subject)
	require.Equal(t, exampleIssuer, parsed.Issuer)
	require.Equal(t, jwtx.PurposePasswordReset, parsed.Purpose)
	require.Equal(t, "binding-1", parsed.Binding)
	require.NotEmpty(t, parsed.ID)
}

func TestEdDSAKIDIsStableForSameKey(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	a, err := jwtx.NewSignerEdDSA(pemKey)
	require.NoError(t, err)
	b, err := jwtx.NewSignerEdDSA(pemKey)
	require.NoError(t, err)

	require.Equal(t, a.KID(), b.KID())
}

func TestEdDSAVerifyFailures(t *testing.T) {
	signer, err := jwtx.NewEphemeralEdDSA()
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sign := func(purpose, issuer string) string {
		tok, err := signer.Sign(jwtx.NewTicketClaims("user-1", purpose, "", issuer, time.Minute, now))
		require.NoError(t, err)
		return tok
	}

	verifier := jwtx.NewVerifierEdDSA(signer, exampleIssuer)
	verifier.Now = func() time.Time { return now.Add(30 * time.Second) }

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := verifier.Verify(sign(jwtx.PurposePasswordReset, "someone-else"), jwtx.PurposePasswordReset)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		_, err := verifier.Verify(sign("email_change", exampleIssuer), jwtx.PurposePasswordReset)
		require.ErrorIs(t, err, jwtx.ErrPurpose)
	})

	t.Run("expired", func(t *testing.T) {
		late := jwtx.NewVerifierEdDSA(signer, exampleIssuer)
		late.Now = func() time.Time { return now.Add(2 * time.Minute) }

		_, err := late.Verify(sign(jwtx.PurposePasswordReset, exampleIssuer), jwtx.PurposePasswordReset)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		early := jwtx.NewVerifierEdDSA(signer, exampleIssuer)
		early.Now = func() time.Time { return now.Add(-time.Minute) }

		_, err := early.Verify(sign(jwtx.PurposePasswordReset, exampleIssuer), jwtx.PurposePasswordReset)
		require.ErrorIs(t, err, jwtx.ErrNotYetValid)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := jwtx.NewEphemeralEdDSA()
		require.NoError(t, err)
		tok, err := other.Sign(jwtx.NewTicketClaims("user-1", jwtx.PurposePasswordReset, "", exampleIssuer, time.Minute, now))
		require.NoError(t, err)

		_, err = verifier.Verify(tok, jwtx.PurposePasswordReset)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.jwt", jwtx.PurposePasswordReset)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestNewSignerEdDSA_InvalidPEM(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA([]byte("not-a-pem-key"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid PEM")
}

func TestLoadOrCreateEdDSA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticket.pem")

	first, err := jwtx.LoadOrCreateEdDSA(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "key file should be created")

	second, err := jwtx.LoadOrCreateEdDSA(path)
	require.NoError(t, err)
	require.Equal(t, first.KID(), second.KID())

	ephemeral, err := jwtx.LoadOrCreateEdDSA("")
	require.NoError(t, err)
	require.NotEqual(t, first.KID(), ephemeral.KID())
}
