package onboard_test

import (
	"testing"

	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
	"github.com/stretchr/testify/require"
)

// TestVerifyOTPRateLimit verifies code guessing is capped per email.
func TestVerifyOTPRateLimit(t *testing.T) {
	c := setupOnboardContainerWithDefaultRateLimits(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()
	email := "guesser@example.com"

	registerOwner(t, client, email)

	var limited bool
	for range 10 {
		_, err := client.VerifyOTP(ctx, email, "000000")
		if onboardsdk.IsCode(err, onboardsdk.ErrorCodeRateLimitExceeded) {
			limited = true
			break
		}
	}
	require.True(t, limited, "verify-otp should be rate limited within 10 attempts")

	// A different address is not affected
	_, err := client.VerifyOTP(ctx, "other@example.com", "000000")
	assertAPIError(t, err, onboardsdk.ErrorCodeAccountNotFound)
}
