package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/delivery"
	"github.com/aussiebroadwan/onboard/internal/onboard/domain"
	"github.com/aussiebroadwan/onboard/internal/onboard/metrics"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
	"github.com/aussiebroadwan/onboard/pkg/slogx"
)

var (
	ErrOwnerNotFound   = errors.New("owner profile not found")
	ErrAlreadyVerified = errors.New("account already verified")
)

// VerifiedMessage is returned to the owner after a successful verification.
const VerifiedMessage = "Your account has been successfully verified. You can now log in."

type VerificationService struct {
	Store   store.Store
	Sender  delivery.Sender
	Metrics *metrics.Metrics
	OTP     OTPPolicy

	Now func() time.Time
}

type VerifyResult struct {
	UserID  string
	OwnerID string
	Message string
}

// VerifyOTP confirms a registration code and moves the owner from
// UNVERIFIED to PENDING. The attempt is counted before the code is compared;
// nothing else is written unless every check passes.
func (s *VerificationService) VerifyOTP(ctx context.Context, email, code string) (VerifyResult, error) {
	log := slogx.FromContext(ctx)

	if err := required(field{"email", email}, field{"otp", code}); err != nil {
		return VerifyResult{}, err
	}
	email = domain.NormalizeEmail(email)
	now := nowFrom(s.Now)

	var result VerifyResult
	_, err := s.OTP.spendAttempt(ctx, s.Store, email, domain.OTPPurposeRegistration, now)
	if err == nil {
		result, err = s.verifyTx(ctx, email, code, now)
	}

	s.Metrics.OTPVerification(string(domain.OTPPurposeRegistration), otpResult(err))
	if err != nil {
		if isExpected(err) {
			log.Info("otp verification rejected", slog.String("email", email), slog.String("reason", err.Error()))
			return VerifyResult{}, err
		}
		log.Error("otp verification failed", slog.Any("error", err))
		return VerifyResult{}, err
	}

	log.Info("owner verified, pending approval",
		slog.String("user_id", result.UserID),
		slog.String("owner_id", result.OwnerID),
	)
	return result, nil
}

// verifyTx runs the status and code checks and the UNVERIFIED to PENDING
// transition in one transaction.
func (s *VerificationService) verifyTx(ctx context.Context, email, code string, now time.Time) (VerifyResult, error) {
	var result VerifyResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, owner, err := lookupOwner(ctx, tx, email)
		if err != nil {
			return err
		}

		if owner.Status != domain.OwnerStatusUnverified {
			return ErrAlreadyVerified
		}
		if err := checkOTP(user, domain.OTPPurposeRegistration, code, now); err != nil {
			return err
		}

		if err := tx.Users().ClearOTP(ctx, user.ID); err != nil {
			return fmt.Errorf("clear otp: %w", err)
		}

		// Only one concurrent verifier can make this transition.
		err = tx.Owners().AdvanceStatus(ctx, owner.ID, domain.OwnerStatusUnverified, domain.OwnerStatusPending)
		if errors.Is(err, store.ErrStatusConflict) {
			return ErrAlreadyVerified
		}
		if err != nil {
			return fmt.Errorf("advance owner status: %w", err)
		}

		result = VerifyResult{UserID: user.ID, OwnerID: owner.ID, Message: VerifiedMessage}
		return nil
	})
	return result, err
}

// ResendOTP delivers a new registration code and then stores it. The send
// happens before any transaction is opened; if it fails nothing is written
// and the previous code stays valid.
func (s *VerificationService) ResendOTP(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	if err := required(field{"email", email}); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)
	now := nowFrom(s.Now)

	err := s.resend(ctx, email, now)
	if err != nil {
		if isExpected(err) {
			log.Info("otp resend rejected", slog.String("email", email), slog.String("reason", err.Error()))
			return err
		}
		log.Error("otp resend failed", slog.Any("error", err))
		return err
	}

	log.Info("registration otp reissued", slog.String("email", email))
	return nil
}

func (s *VerificationService) resend(ctx context.Context, email string, now time.Time) error {
	user, owner, err := lookupOwner(ctx, s.Store, email)
	if err != nil {
		return err
	}
	if owner.Status != domain.OwnerStatusUnverified {
		return ErrAlreadyVerified
	}

	issued, err := s.OTP.issue(now)
	if err != nil {
		return err
	}

	sendErr := s.Sender.SendOTP(ctx, user.Email, issued.Code)
	s.Metrics.OTPDelivery(string(domain.OTPPurposeRegistration), sendErr)
	if sendErr != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, sendErr)
	}

	// The owner may have verified while the code was in flight.
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, owner, err := lookupOwner(ctx, tx, email)
		if err != nil {
			return err
		}
		if owner.Status != domain.OwnerStatusUnverified {
			return ErrAlreadyVerified
		}
		if err := tx.Users().SetOTP(ctx, user.ID, otpUpdate(issued, domain.OTPPurposeRegistration)); err != nil {
			return fmt.Errorf("store otp: %w", err)
		}
		return nil
	})
}

// lookupOwner loads the user for email and its owner profile. st may be a Tx.
func lookupOwner(ctx context.Context, st store.Store, email string) (domain.User, domain.OwnerProfile, error) {
	user, err := st.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.OwnerProfile{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.User{}, domain.OwnerProfile{}, fmt.Errorf("get user: %w", err)
	}

	owner, err := st.Owners().GetOwnerByUserID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.OwnerProfile{}, ErrOwnerNotFound
	}
	if err != nil {
		return domain.User{}, domain.OwnerProfile{}, fmt.Errorf("get owner: %w", err)
	}
	return user, owner, nil
}

// isExpected reports whether err is a caller mistake rather than a fault.
func isExpected(err error) bool {
	for _, target := range []error{
		ErrMissingField, ErrAccountNotFound, ErrOwnerNotFound, ErrAlreadyVerified,
		ErrOTPNotIssued, ErrOTPExpired, ErrOTPMismatch, ErrOTPAttemptsExceeded,
		ErrInvalidResetTicket, ErrPasswordUnchanged, ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
