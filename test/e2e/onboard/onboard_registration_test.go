package onboard_test

import (
	"testing"

	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
	"github.com/stretchr/testify/require"
)

// TestRegistrationFlow covers register, a wrong code, and a successful
// verification followed by a rejected second attempt.
func TestRegistrationFlow(t *testing.T) {
	c := setupOnboardContainer(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()
	email := "flow@example.com"

	reg := registerOwner(t, client, email)
	code := c.waitForCode(t, email, 1)
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err := client.VerifyOTP(ctx, email, wrong)
	assertAPIError(t, err, onboardsdk.ErrorCodeOTPMismatch)

	res, err := client.VerifyOTP(ctx, email, code)
	require.NoError(t, err)
	require.Equal(t, reg.UserID, res.UserID)
	require.Equal(t, reg.OwnerID, res.OwnerID)
	require.NotEmpty(t, res.Message)

	_, err = client.VerifyOTP(ctx, email, code)
	assertAPIError(t, err, onboardsdk.ErrorCodeAlreadyVerified)
}

// TestDuplicateRegistration verifies an email can only register once,
// regardless of case.
func TestDuplicateRegistration(t *testing.T) {
	c := setupOnboardContainer(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)

	registerOwner(t, client, "dupe@example.com")

	_, err := client.Register(t.Context(), onboardsdk.RegisterRequest{
		BusinessEmail: "DUPE@example.com",
		Phone:         ownerPhone,
		Password:      ownerPassword,
		BusinessName:  "Second Bistro",
	})
	assertAPIError(t, err, onboardsdk.ErrorCodeOwnerExists)
}

// TestResendInvalidatesPreviousCode verifies only the newest code works.
func TestResendInvalidatesPreviousCode(t *testing.T) {
	c := setupOnboardContainer(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()
	email := "resend@example.com"

	registerOwner(t, client, email)
	first := c.waitForCode(t, email, 1)

	require.NoError(t, client.ResendOTP(ctx, email))
	second := c.waitForCode(t, email, 2)

	if first != second {
		_, err := client.VerifyOTP(ctx, email, first)
		assertAPIError(t, err, onboardsdk.ErrorCodeOTPMismatch)
	}

	_, err := client.VerifyOTP(ctx, email, second)
	require.NoError(t, err)
}

// TestUnknownAccount verifies the not-found responses.
func TestUnknownAccount(t *testing.T) {
	c := setupOnboardContainer(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)

	_, err := client.VerifyOTP(t.Context(), "ghost@example.com", "123456")
	assertAPIError(t, err, onboardsdk.ErrorCodeAccountNotFound)

	err = client.ResendOTP(t.Context(), "ghost@example.com")
	assertAPIError(t, err, onboardsdk.ErrorCodeAccountNotFound)
}

// TestVerifyOTPLocksAfterTooManyGuesses verifies a code stops working once
// its attempts are used up, even when the right code is sent afterwards.
func TestVerifyOTPLocksAfterTooManyGuesses(t *testing.T) {
	c := setupOnboardContainer(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()
	email := "locked@example.com"

	registerOwner(t, client, email)
	code := c.waitForCode(t, email, 1)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for range 5 {
		_, err := client.VerifyOTP(ctx, email, wrong)
		assertAPIError(t, err, onboardsdk.ErrorCodeOTPMismatch)
	}

	_, err := client.VerifyOTP(ctx, email, code)
	assertAPIError(t, err, onboardsdk.ErrorCodeOTPAttemptsExceeded)

	// A fresh code restores the attempts.
	require.NoError(t, client.ResendOTP(ctx, email))
	_, err = client.VerifyOTP(ctx, email, c.waitForCode(t, email, 2))
	require.NoError(t, err)
}
