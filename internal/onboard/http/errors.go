package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/onboard/internal/onboard/service"
	"github.com/aussiebroadwan/onboard/pkg/httpx"
	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
	"github.com/aussiebroadwan/onboard/pkg/slogx"
)

// serviceError maps a service sentinel to the response the owner sees.
type serviceError struct {
	target      error
	status      int
	code        string
	description string
}

var serviceErrors = []serviceError{
	{service.ErrOwnerExists, http.StatusConflict, onboardsdk.ErrorCodeOwnerExists,
		"Restaurant owner already exists."},
	{service.ErrAlreadyVerified, http.StatusConflict, onboardsdk.ErrorCodeAlreadyVerified,
		"Your account has already been verified and is now pending admin approval."},
	{service.ErrAccountNotFound, http.StatusNotFound, onboardsdk.ErrorCodeAccountNotFound,
		"No account found with this email. Please register first."},
	{service.ErrOwnerNotFound, http.StatusNotFound, onboardsdk.ErrorCodeOwnerNotFound,
		"Owner information not found for this email."},
	{service.ErrOTPNotIssued, http.StatusBadRequest, onboardsdk.ErrorCodeOTPNotIssued,
		"No OTP found. Please request again."},
	{service.ErrOTPExpired, http.StatusBadRequest, onboardsdk.ErrorCodeOTPExpired,
		"Your OTP has expired. Please request a new one."},
	{service.ErrOTPMismatch, http.StatusBadRequest, onboardsdk.ErrorCodeOTPMismatch,
		"The OTP you entered is incorrect. Please try again."},
	{service.ErrOTPAttemptsExceeded, http.StatusTooManyRequests, onboardsdk.ErrorCodeOTPAttemptsExceeded,
		"Too many incorrect attempts. Please request a new OTP."},
	{service.ErrPasswordTooLong, http.StatusBadRequest, onboardsdk.ErrorCodeInvalidRequest,
		"Your password is too long. Please use at most 72 bytes."},
	{service.ErrInvalidResetTicket, http.StatusUnauthorized, onboardsdk.ErrorCodeInvalidResetToken,
		"Your reset link is invalid or has expired. Please request a new OTP."},
	{service.ErrPasswordUnchanged, http.StatusBadRequest, onboardsdk.ErrorCodePasswordUnchanged,
		"Your new password must be different from your current password."},
	{service.ErrDeliveryFailed, http.StatusBadGateway, onboardsdk.ErrorCodeDeliveryFailed,
		"We could not send your OTP. Please try again shortly."},
}

// wording replaces the default description of a sentinel for one endpoint.
type wording map[error]string

var (
	// resendWording and forgotWording drop the "register first" hint.
	resendWording = wording{
		service.ErrAccountNotFound: "No account found with this email.",
	}
	forgotWording = resendWording

	resetWording = wording{
		service.ErrAccountNotFound: "User not found.",
		service.ErrOTPExpired:      "OTP has expired. Please request a new one.",
		service.ErrOTPMismatch:     "Invalid OTP. Please try again.",
	}
)

// writeServiceError writes the response for err. Unknown errors are logged
// and reported as server_error with fallback as the description. words may
// be nil.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, words wording) {
	if errors.Is(err, service.ErrMissingField) {
		writeBadRequest(w, err.Error())
		return
	}

	for _, se := range serviceErrors {
		if errors.Is(err, se.target) {
			description := se.description
			if override, ok := words[se.target]; ok {
				description = override
			}
			httpx.WriteJSON(w, se.status, onboardsdk.ErrorResponse{
				Error:            se.code,
				ErrorDescription: description,
			})
			return
		}
	}

	slogx.FromContext(r.Context()).Error(fallback, "err", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, onboardsdk.ErrorResponse{
		Error:            onboardsdk.ErrorCodeServerError,
		ErrorDescription: fallback,
	})
}

func writeBadRequest(w http.ResponseWriter, description string) {
	httpx.WriteJSON(w, http.StatusBadRequest, onboardsdk.ErrorResponse{
		Error:            onboardsdk.ErrorCodeInvalidRequest,
		ErrorDescription: description,
	})
}

// decodeBody decodes the JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		writeBadRequest(w, err.Error())
		return false
	}
	return true
}
