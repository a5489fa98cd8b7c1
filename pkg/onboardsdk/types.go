package onboardsdk

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	// Error is a stable machine-readable code (see the ErrorCode constants)
	Error string `json:"error" example:"otp_expired"`

	// ErrorDescription is a human-readable message suitable for display
	ErrorDescription string `json:"error_description" example:"Your OTP has expired. Please request a new one."`
}

// MessageResponse is returned by endpoints that only acknowledge a request.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Owner registration
// ============================================================================

// RegisterRequest is the body of POST /v1/owners/register.
type RegisterRequest struct {
	BusinessEmail string `json:"business_email" example:"owner@example.com"`
	Phone         string `json:"phone" example:"0400111222"`
	Password      string `json:"password" example:"correct horse battery staple"`
	BusinessName  string `json:"business_name" example:"Corner Bistro"`
	ReferralCode  string `json:"referral_code,omitempty" example:"FRIEND10"`
}

// RegisterResponse is returned with 201 Created.
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	OwnerID string `json:"owner_id"`
}

// VerifyOTPRequest is the body of both OTP verification endpoints.
type VerifyOTPRequest struct {
	Email string `json:"email" example:"owner@example.com"`
	OTP   string `json:"otp" example:"4821"`
}

// VerifyOTPResponse is returned once a registration code is accepted.
type VerifyOTPResponse struct {
	UserID  string `json:"user_id"`
	OwnerID string `json:"owner_id"`
	Message string `json:"message"`
}

// EmailRequest is the body of endpoints that only need an address.
type EmailRequest struct {
	Email string `json:"email" example:"owner@example.com"`
}

// ============================================================================
// Password reset
// ============================================================================

// ResetTicketResponse carries the ticket exchanged for a new password.
type ResetTicketResponse struct {
	ResetToken string `json:"reset_token"`

	// ExpiresIn is the lifetime of the ticket in seconds
	ExpiresIn int `json:"expires_in"`
}

// ResetPasswordRequest is the body of POST /v1/password/reset.
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
