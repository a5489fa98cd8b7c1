package http

import (
	"net/http"

	"github.com/aussiebroadwan/onboard/internal/onboard/service"
	"github.com/aussiebroadwan/onboard/pkg/httpx"
	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
)

const (
	// ForgotMessage acknowledges a password reset request.
	ForgotMessage = "A password reset OTP has been sent to your email."
	// ResetMessage confirms a completed password reset.
	ResetMessage = "Your password has been reset. You can now log in."
)

type PasswordHandler struct {
	PasswordResetService *service.PasswordResetService
}

// HandleForgot godoc
//
//	@Summary		Request Password Reset
//	@Description	Email a password reset code. Any outstanding code for this account is replaced.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.EmailRequest		true	"Account email"
//	@Success		200		{object}	onboardsdk.MessageResponse	"message"
//	@Failure		404		{object}	onboardsdk.ErrorResponse	"account_not_found"
//	@Failure		502		{object}	onboardsdk.ErrorResponse	"delivery_failed"
//	@Router			/v1/password/forgot [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req onboardsdk.EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.PasswordResetService.RequestReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "Failed to send password reset OTP", forgotWording)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.MessageResponse{Message: ForgotMessage})
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify Password Reset OTP
//	@Description	Exchange a password reset code for a short-lived, single-use reset token.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.VerifyOTPRequest		true	"Email and code"
//	@Success		200		{object}	onboardsdk.ResetTicketResponse	"reset_token, expires_in"
//	@Failure		400		{object}	onboardsdk.ErrorResponse		"otp_not_issued, otp_expired, otp_mismatch"
//	@Failure		404		{object}	onboardsdk.ErrorResponse		"account_not_found"
//	@Failure		429		{object}	onboardsdk.ErrorResponse		"rate_limit_exceeded, otp_attempts_exceeded"
//	@Router			/v1/password/verify-otp [post].
func (h *PasswordHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req onboardsdk.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.PasswordResetService.VerifyResetOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeServiceError(w, r, err, "Failed to verify OTP", resetWording)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.ResetTicketResponse{
		ResetToken: ticket.Token,
		ExpiresIn:  int(ticket.TTL.Seconds()),
	})
}

// HandleReset godoc
//
//	@Summary		Reset Password
//	@Description	Set a new password using the token from verify-otp. The token stops working after one reset.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.ResetPasswordRequest	true	"Reset token and new password"
//	@Success		200		{object}	onboardsdk.MessageResponse		"message"
//	@Failure		400		{object}	onboardsdk.ErrorResponse		"invalid_request, password_unchanged"
//	@Failure		401		{object}	onboardsdk.ErrorResponse		"invalid_reset_token"
//	@Router			/v1/password/reset [post].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req onboardsdk.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.PasswordResetService.ResetPassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "Failed to reset password", resetWording)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.MessageResponse{Message: ResetMessage})
}
