package onboardsdk

import (
	"context"
	"net/http"
)

// ForgotPassword emails a password reset code to email.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/v1/password/forgot", EmailRequest{Email: email})
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// VerifyResetOTP exchanges a reset code for a reset ticket.
func (c *SDKClient) VerifyResetOTP(ctx context.Context, email, otp string) (*ResetTicketResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/password/verify-otp", VerifyOTPRequest{Email: email, OTP: otp})
	if err != nil {
		return nil, err
	}

	var out ResetTicketResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using a ticket from VerifyResetOTP.
func (c *SDKClient) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	resp, err := c.postJSON(ctx, "/v1/password/reset", ResetPasswordRequest{
		ResetToken:  resetToken,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
