package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/domain"
	"github.com/aussiebroadwan/onboard/internal/onboard/metrics"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
	"github.com/aussiebroadwan/onboard/pkg/otpx"
)

// Errors shared by the OTP-gated flows.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrAccountNotFound = errors.New("account not found")
	ErrOTPNotIssued    = errors.New("no otp issued")
	ErrOTPExpired      = errors.New("otp expired")
	ErrOTPMismatch     = errors.New("otp mismatch")

	// ErrOTPAttemptsExceeded locks the outstanding code until a new one is
	// issued.
	ErrOTPAttemptsExceeded = errors.New("too many otp attempts")

	// ErrDeliveryFailed wraps the sender's error when a code could not be sent.
	ErrDeliveryFailed = errors.New("otp delivery failed")
)

// DefaultOTPMaxAttempts is how many codes may be tried against one issued OTP.
const DefaultOTPMaxAttempts = 5

// OTPPolicy controls how codes are generated and how often they may be tried.
type OTPPolicy struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
}

func (p OTPPolicy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultOTPMaxAttempts
	}
	return p.MaxAttempts
}

func (p OTPPolicy) issue(now time.Time) (otpx.Issued, error) {
	digits := p.Digits
	if digits == 0 {
		digits = otpx.DefaultDigits
	}
	issued, err := otpx.Issue(digits, p.TTL, now)
	if err != nil {
		return otpx.Issued{}, fmt.Errorf("issue otp: %w", err)
	}
	return issued, nil
}

func otpUpdate(issued otpx.Issued, purpose domain.OTPPurpose) store.OTPUpdate {
	return store.OTPUpdate{
		Hash:      issued.Hash,
		Purpose:   purpose,
		ExpiresAt: issued.ExpiresAt,
	}
}

// spendAttempt looks up the user for email and, when a live code for purpose
// is outstanding, counts one attempt against it. It must run outside any
// transaction the comparison happens in, so a failed guess stays counted.
func (p OTPPolicy) spendAttempt(ctx context.Context, st store.Store, email string, purpose domain.OTPPurpose, now time.Time) (domain.User, error) {
	user, err := st.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	// checkOTP reports these in order.
	if !user.HasOTP(purpose) || user.OTPExpired(now) {
		return user, nil
	}

	err = st.Users().SpendOTPAttempt(ctx, user.ID, p.maxAttempts())
	if errors.Is(err, store.ErrAttemptsExhausted) {
		// The code may have been consumed since it was read. Only a live code
		// counts as locked; anything else is left to checkOTP.
		current, getErr := st.Users().GetUserByID(ctx, user.ID)
		if getErr != nil {
			return domain.User{}, fmt.Errorf("get user: %w", getErr)
		}
		if !current.HasOTP(purpose) || current.OTPExpired(now) {
			return current, nil
		}
		return domain.User{}, ErrOTPAttemptsExceeded
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("spend otp attempt: %w", err)
	}
	return user, nil
}

// checkOTP validates code against the user's outstanding OTP for purpose.
// Checks run in a fixed order: issued, expired, then the code itself.
func checkOTP(u domain.User, purpose domain.OTPPurpose, code string, now time.Time) error {
	if !u.HasOTP(purpose) {
		return ErrOTPNotIssued
	}
	if u.OTPExpired(now) {
		return ErrOTPExpired
	}
	if !otpx.Matches(code, *u.OTPHash) {
		return ErrOTPMismatch
	}
	return nil
}

// otpResult is the metrics label for a checkOTP outcome.
func otpResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrOTPNotIssued):
		return metrics.ResultMissing
	case errors.Is(err, ErrOTPExpired):
		return metrics.ResultExpired
	case errors.Is(err, ErrOTPMismatch):
		return metrics.ResultMismatch
	case errors.Is(err, ErrAlreadyVerified):
		return metrics.ResultVerified
	case errors.Is(err, ErrOTPAttemptsExceeded):
		return metrics.ResultLocked
	}
	return metrics.ResultFailure
}

func nowFrom(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now().UTC()
	}
	return fn().UTC()
}

type field struct {
	name  string
	value string
}

// required returns ErrMissingField naming the first blank field.
func required(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}
