package onboardsdk

import (
	"context"
	"net/http"
)

// Register creates an owner account. A code is emailed to the business
// address.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/owners/register", req)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP confirms the registration code for email.
func (c *SDKClient) VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/owners/verify-otp", VerifyOTPRequest{Email: email, OTP: otp})
	if err != nil {
		return nil, err
	}

	var out VerifyOTPResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendOTP sends a fresh registration code, invalidating the previous one.
func (c *SDKClient) ResendOTP(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/v1/owners/resend-otp", EmailRequest{Email: email})
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
