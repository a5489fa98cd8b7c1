/*
Package onboardsdk provides a client for the onboard service.

# Overview

The service registers restaurant owners, confirms their email address with a
one-time code and lets them reset a forgotten password. Every endpoint is
public; there is no session to manage.

	client := onboardsdk.NewSDKClient("https://onboard.example.com")

	reg, err := client.Register(ctx, onboardsdk.RegisterRequest{
		BusinessEmail: "owner@example.com",
		Phone:         "0400111222",
		Password:      "correct horse battery staple",
		BusinessName:  "Corner Bistro",
	})

	// The code arrives by email.
	res, err := client.VerifyOTP(ctx, "owner@example.com", code)

# Password reset

Resetting is a three step exchange. The ticket returned by VerifyResetOTP is
short-lived and can be used once:

	err := client.ForgotPassword(ctx, "owner@example.com")
	ticket, err := client.VerifyResetOTP(ctx, "owner@example.com", code)
	err = client.ResetPassword(ctx, ticket.ResetToken, "a brand new password")

# Errors

Non-2xx responses are returned as *APIError. Compare the Code field against
the ErrorCode constants, or use IsCode:

	if onboardsdk.IsCode(err, onboardsdk.ErrorCodeOTPExpired) {
		_ = client.ResendOTP(ctx, "owner@example.com")
	}
*/
package onboardsdk
