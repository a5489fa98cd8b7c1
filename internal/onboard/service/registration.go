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
	"github.com/aussiebroadwan/onboard/pkg/idx"
	"github.com/aussiebroadwan/onboard/pkg/slogx"
)

var (
	ErrOwnerExists = errors.New("restaurant owner already exists")

	// ErrPasswordTooLong is returned when bcrypt is configured and the
	// password is longer than 72 bytes.
	ErrPasswordTooLong = errors.New("password too long")
)

type RegistrationService struct {
	Store   store.Store
	Hasher  *cryptox.PasswordHasher
	Sender  delivery.Sender
	Metrics *metrics.Metrics
	OTP     OTPPolicy

	// Now defaults to time.Now.
	Now func() time.Time
}

type RegisterInput struct {
	BusinessEmail string
	Phone         string
	Password      string
	BusinessName  string
	ReferralCode  string
}

type RegisterResult struct {
	UserID  string
	OwnerID string
}

// Register creates a user and its owner profile in one transaction, then
// emails a registration OTP to the business address.
//
// The OTP is sent after commit. A failed delivery is logged but does not undo
// the registration; the owner can ask for a new code with ResendOTP.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	log := slogx.FromContext(ctx)

	if err := required(
		field{"business_email", in.BusinessEmail},
		field{"phone", in.Phone},
		field{"password", in.Password},
		field{"business_name", in.BusinessName},
	); err != nil {
		return RegisterResult{}, err
	}

	email := domain.NormalizeEmail(in.BusinessEmail)
	now := nowFrom(s.Now)

	// 1. Hash the password and issue the code before opening the transaction.
	passwordHash, err := hashPassword(s.Hasher, in.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		log.Info("registration rejected, password too long")
		return RegisterResult{}, err
	}
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return RegisterResult{}, err
	}

	issued, err := s.OTP.issue(now)
	if err != nil {
		log.Error("failed to issue otp", slog.Any("error", err))
		return RegisterResult{}, err
	}

	purpose := domain.OTPPurposeRegistration
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         domain.DefaultUserName,
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: passwordHash,
		Role:         domain.RoleRestaurantOwner,
		OTPHash:      &issued.Hash,
		OTPPurpose:   &purpose,
		OTPExpiresAt: &issued.ExpiresAt,
	}
	owner := domain.OwnerProfile{
		ID:            idx.NewAt(now).String(),
		UserID:        user.ID,
		BusinessName:  in.BusinessName,
		BusinessEmail: email,
		ReferralCode:  in.ReferralCode,
		Status:        domain.OwnerStatusUnverified,
	}

	// 2. Create both records or neither.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByEmail(ctx, email)
		if err == nil {
			return ErrOwnerExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return mapExists(err)
		}
		return mapExists(tx.Owners().CreateOwner(ctx, owner))
	})
	if err != nil {
		if errors.Is(err, ErrOwnerExists) {
			log.Warn("registration rejected, email already registered", slog.String("email", email))
			s.Metrics.Registration(metrics.ResultExists)
			return RegisterResult{}, ErrOwnerExists
		}
		log.Error("failed to create owner", slog.Any("error", err))
		s.Metrics.Registration(metrics.ResultFailure)
		return RegisterResult{}, fmt.Errorf("create owner: %w", err)
	}
	s.Metrics.Registration(metrics.ResultSuccess)

	// 3. Deliver the code.
	sendErr := s.Sender.SendOTP(ctx, owner.BusinessEmail, issued.Code)
	s.Metrics.OTPDelivery(string(purpose), sendErr)
	if sendErr != nil {
		log.Error("failed to deliver registration otp",
			slog.String("user_id", user.ID),
			slog.Any("error", sendErr),
		)
	}

	log.Info("restaurant owner registered",
		slog.String("user_id", user.ID),
		slog.String("owner_id", owner.ID),
	)

	return RegisterResult{UserID: user.ID, OwnerID: owner.ID}, nil
}

func hashPassword(h *cryptox.PasswordHasher, password string) (string, error) {
	hash, err := h.Hash(password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// mapExists folds a unique-constraint race into ErrOwnerExists.
func mapExists(err error) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrOwnerExists
	}
	return err
}
