package http

import (
	"net/http"

	"github.com/aussiebroadwan/onboard/internal/onboard/service"
	"github.com/aussiebroadwan/onboard/pkg/httpx"
	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
)

// ResendMessage acknowledges a reissued registration code.
const ResendMessage = "A new OTP has been sent to your email."

type OwnerHandler struct {
	RegistrationService *service.RegistrationService
	VerificationService *service.VerificationService
}

// HandleRegister godoc
//
//	@Summary		Register Restaurant Owner
//	@Description	Create a user account and its owner profile, then email a one-time code to the business address.
//	@Description	The profile starts UNVERIFIED. A failed email does not undo the registration; use resend-otp.
//	@Tags			Owners
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.RegisterRequest	true	"Owner details"
//	@Success		201		{object}	onboardsdk.RegisterResponse	"user_id, owner_id"
//	@Failure		400		{object}	onboardsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	onboardsdk.ErrorResponse	"owner_exists"
//	@Failure		429		{object}	onboardsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	onboardsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/owners/register [post].
func (h *OwnerHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req onboardsdk.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.RegistrationService.Register(r.Context(), service.RegisterInput{
		BusinessEmail: req.BusinessEmail,
		Phone:         req.Phone,
		Password:      req.Password,
		BusinessName:  req.BusinessName,
		ReferralCode:  req.ReferralCode,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to register owner", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, onboardsdk.RegisterResponse{
		UserID:  res.UserID,
		OwnerID: res.OwnerID,
	})
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify Registration OTP
//	@Description	Confirm the code emailed at registration. On success the owner moves to PENDING admin approval.
//	@Tags			Owners
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.VerifyOTPRequest		true	"Email and code"
//	@Success		200		{object}	onboardsdk.VerifyOTPResponse	"user_id, owner_id, message"
//	@Failure		400		{object}	onboardsdk.ErrorResponse		"otp_not_issued, otp_expired, otp_mismatch"
//	@Failure		404		{object}	onboardsdk.ErrorResponse		"account_not_found, owner_not_found"
//	@Failure		409		{object}	onboardsdk.ErrorResponse		"already_verified"
//	@Failure		429		{object}	onboardsdk.ErrorResponse		"rate_limit_exceeded, otp_attempts_exceeded"
//	@Router			/v1/owners/verify-otp [post].
func (h *OwnerHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req onboardsdk.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.VerificationService.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeServiceError(w, r, err, "Failed to verify OTP", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.VerifyOTPResponse{
		UserID:  res.UserID,
		OwnerID: res.OwnerID,
		Message: res.Message,
	})
}

// HandleResendOTP godoc
//
//	@Summary		Resend Registration OTP
//	@Description	Issue a new registration code. The previous code stops working once the new one is sent.
//	@Tags			Owners
//	@Accept			json
//	@Produce		json
//	@Param			request	body		onboardsdk.EmailRequest		true	"Business email"
//	@Success		200		{object}	onboardsdk.MessageResponse	"message"
//	@Failure		404		{object}	onboardsdk.ErrorResponse	"account_not_found, owner_not_found"
//	@Failure		409		{object}	onboardsdk.ErrorResponse	"already_verified"
//	@Failure		502		{object}	onboardsdk.ErrorResponse	"delivery_failed"
//	@Router			/v1/owners/resend-otp [post].
func (h *OwnerHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req onboardsdk.EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.VerificationService.ResendOTP(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "Failed to resend OTP", resendWording)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.MessageResponse{Message: ResendMessage})
}
