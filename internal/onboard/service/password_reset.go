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
	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/aussiebroadwan/onboard/pkg/jwtx"
	"github.com/aussiebroadwan/onboard/pkg/slogx"
)

var (
	ErrInvalidResetTicket = errors.New("invalid or expired reset ticket")
	ErrPasswordUnchanged  = errors.New("new password must differ from the current password")
)

type PasswordResetService struct {
	Store   store.Store
	Hasher  *cryptox.PasswordHasher
	Sender  delivery.Sender
	Metrics *metrics.Metrics
	OTP     OTPPolicy

	Signer    jwtx.Signer
	Verifier  jwtx.Verifier
	Issuer    string
	TicketTTL time.Duration

	Now func() time.Time
}

// ResetTicket proves a reset OTP was verified. It is exchanged for a new
// password with ResetPassword.
type ResetTicket struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// RequestReset issues a password_reset OTP and delivers it. Any previous
// outstanding code, for either flow, is replaced.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	if err := required(field{"email", email}); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		log.Info("password reset requested for unknown email", slog.String("email", email))
		s.Metrics.PasswordReset(metrics.StageRequest, metrics.ResultMissing)
		return ErrAccountNotFound
	}
	if err != nil {
		log.Error("failed to fetch user", slog.Any("error", err))
		return fmt.Errorf("get user: %w", err)
	}

	issued, err := s.OTP.issue(nowFrom(s.Now))
	if err != nil {
		return err
	}
	if err := s.Store.Users().SetOTP(ctx, user.ID, otpUpdate(issued, domain.OTPPurposePasswordReset)); err != nil {
		log.Error("failed to store reset otp", slog.String("user_id", user.ID), slog.Any("error", err))
		return fmt.Errorf("store otp: %w", err)
	}

	sendErr := s.Sender.SendOTP(ctx, user.Email, issued.Code)
	s.Metrics.OTPDelivery(string(domain.OTPPurposePasswordReset), sendErr)
	if sendErr != nil {
		log.Error("failed to deliver reset otp", slog.String("user_id", user.ID), slog.Any("error", sendErr))
		s.Metrics.PasswordReset(metrics.StageRequest, metrics.ResultFailure)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, sendErr)
	}

	s.Metrics.PasswordReset(metrics.StageRequest, metrics.ResultSuccess)
	log.Info("password reset otp issued", slog.String("user_id", user.ID))
	return nil
}

// VerifyResetOTP checks a password_reset code. Every call with a live code
// counts as an attempt. On success the code is consumed and a signed ticket
// bound to the current password hash is returned.
func (s *PasswordResetService) VerifyResetOTP(ctx context.Context, email, code string) (ResetTicket, error) {
	log := slogx.FromContext(ctx)

	if err := required(field{"email", email}, field{"otp", code}); err != nil {
		return ResetTicket{}, err
	}
	email = domain.NormalizeEmail(email)
	now := nowFrom(s.Now)

	user, err := s.OTP.spendAttempt(ctx, s.Store, email, domain.OTPPurposePasswordReset, now)
	if errors.Is(err, ErrAccountNotFound) {
		s.Metrics.PasswordReset(metrics.StageVerify, metrics.ResultMissing)
		return ResetTicket{}, err
	}
	if errors.Is(err, ErrOTPAttemptsExceeded) {
		s.Metrics.OTPVerification(string(domain.OTPPurposePasswordReset), metrics.ResultLocked)
		s.Metrics.PasswordReset(metrics.StageVerify, metrics.ResultLocked)
		log.Info("reset otp rejected", slog.String("email", email), slog.String("reason", err.Error()))
		return ResetTicket{}, err
	}
	if err != nil {
		log.Error("failed to fetch user", slog.Any("error", err))
		return ResetTicket{}, err
	}

	if err := checkOTP(user, domain.OTPPurposePasswordReset, code, now); err != nil {
		s.Metrics.OTPVerification(string(domain.OTPPurposePasswordReset), otpResult(err))
		s.Metrics.PasswordReset(metrics.StageVerify, otpResult(err))
		log.Info("reset otp rejected", slog.String("user_id", user.ID), slog.String("reason", err.Error()))
		return ResetTicket{}, err
	}

	if err := s.Store.Users().ClearOTP(ctx, user.ID); err != nil {
		log.Error("failed to clear reset otp", slog.String("user_id", user.ID), slog.Any("error", err))
		return ResetTicket{}, fmt.Errorf("clear otp: %w", err)
	}
	s.Metrics.OTPVerification(string(domain.OTPPurposePasswordReset), metrics.ResultSuccess)

	claims := jwtx.NewTicketClaims(
		user.ID,
		jwtx.PurposePasswordReset,
		cryptox.FingerprintToken(user.PasswordHash),
		s.Issuer,
		s.TicketTTL,
		now,
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign reset ticket", slog.Any("error", err))
		return ResetTicket{}, fmt.Errorf("sign ticket: %w", err)
	}

	s.Metrics.PasswordReset(metrics.StageVerify, metrics.ResultSuccess)
	log.Info("reset otp verified", slog.String("user_id", user.ID))
	return ResetTicket{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		TTL:       claims.ExpiresAt.Sub(claims.IssuedAt.Time),
	}, nil
}

// ResetPassword replaces the password of the ticket's subject. The ticket
// stops verifying once the password hash it was bound to changes.
func (s *PasswordResetService) ResetPassword(ctx context.Context, ticket, newPassword string) error {
	log := slogx.FromContext(ctx)

	if err := required(field{"reset_token", ticket}, field{"new_password", newPassword}); err != nil {
		return err
	}

	claims, err := s.Verifier.Verify(ticket, jwtx.PurposePasswordReset)
	if err != nil {
		log.Info("reset ticket rejected", slog.String("reason", err.Error()))
		s.Metrics.PasswordReset(metrics.StageReset, metrics.ResultFailure)
		return ErrInvalidResetTicket
	}

	newHash, err := hashPassword(s.Hasher, newPassword)
	if errors.Is(err, ErrPasswordTooLong) {
		log.Info("password reset rejected", slog.String("user_id", claims.Subject), slog.String("reason", err.Error()))
		s.Metrics.PasswordReset(metrics.StageReset, metrics.ResultFailure)
		return err
	}
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, claims.Subject)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		if !cryptox.FingerprintMatches(user.PasswordHash, claims.Binding) {
			return ErrInvalidResetTicket
		}
		if s.Hasher.Verify(newPassword, user.PasswordHash) == nil {
			return ErrPasswordUnchanged
		}

		if err := tx.Users().UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Metrics.PasswordReset(metrics.StageReset, metrics.ResultFailure)
		if isExpected(err) {
			log.Info("password reset rejected", slog.String("user_id", claims.Subject), slog.String("reason", err.Error()))
			return err
		}
		log.Error("password reset failed", slog.String("user_id", claims.Subject), slog.Any("error", err))
		return err
	}

	s.Metrics.PasswordReset(metrics.StageReset, metrics.ResultSuccess)
	log.Info("password reset", slog.String("user_id", claims.Subject))
	return nil
}
