package onboardsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the "error" field.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeOwnerExists         = "owner_exists"
	ErrorCodeAccountNotFound     = "account_not_found"
	ErrorCodeOwnerNotFound       = "owner_not_found"
	ErrorCodeAlreadyVerified     = "already_verified"
	ErrorCodeOTPNotIssued        = "otp_not_issued"
	ErrorCodeOTPExpired          = "otp_expired"
	ErrorCodeOTPMismatch         = "otp_mismatch"
	ErrorCodeOTPAttemptsExceeded = "otp_attempts_exceeded"
	ErrorCodeInvalidResetToken   = "invalid_reset_token"
	ErrorCodePasswordUnchanged   = "password_unchanged"
	ErrorCodeDeliveryFailed      = "delivery_failed"
	ErrorCodeRateLimitExceeded   = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsCode reports whether err is an *APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns an error body into an *APIError. Bodies that are
// not in the expected shape still produce an *APIError from the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
