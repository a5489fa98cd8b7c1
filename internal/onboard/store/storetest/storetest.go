// Package storetest holds behaviour tests shared by every store driver.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/domain"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
	"github.com/aussiebroadwan/onboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises s. The store must be migrated and empty.
func Run(t *testing.T, s store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("owners", func(t *testing.T) { testOwners(t, s) })
	t.Run("otp", func(t *testing.T) { testOTP(t, s) })
	t.Run("otp attempts", func(t *testing.T) { testOTPAttempts(t, s) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, s) })
}

// NewUser returns a user with a unique id and email.
func NewUser(email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Name:         domain.DefaultUserName,
		Email:        email,
		Phone:        "0400000000",
		PasswordHash: "$argon2id$placeholder",
		Role:         domain.RoleRestaurantOwner,
	}
}

// NewOwner returns an unverified owner for u.
func NewOwner(u domain.User) domain.OwnerProfile {
	return domain.OwnerProfile{
		ID:            idx.New().String(),
		UserID:        u.ID,
		BusinessName:  "Corner Bistro",
		BusinessEmail: u.Email,
		Status:        domain.OwnerStatusUnverified,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("users@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.DefaultUserName, got.Name)
	require.Equal(t, domain.RoleRestaurantOwner, got.Role)
	require.Nil(t, got.OTPHash)
	require.Nil(t, got.OTPPurpose)
	require.Nil(t, got.OTPExpiresAt)
	require.False(t, got.CreatedAt.IsZero())

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	dup := NewUser(u.Email)
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "$2a$10$other"))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "$2a$10$other", got.PasswordHash)

	require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "missing", "x"), store.ErrNotFound)
}

func testOwners(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("owners@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	o := NewOwner(u)
	o.ReferralCode = "FRIEND10"
	require.NoError(t, s.Owners().CreateOwner(ctx, o))

	got, err := s.Owners().GetOwnerByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, o.ID, got.ID)
	require.Equal(t, "FRIEND10", got.ReferralCode)
	require.Equal(t, domain.OwnerStatusUnverified, got.Status)

	// One profile per user.
	second := NewOwner(u)
	second.BusinessEmail = "other@example.com"
	require.ErrorIs(t, s.Owners().CreateOwner(ctx, second), store.ErrAlreadyExists)

	require.NoError(t, s.Owners().AdvanceStatus(ctx, o.ID, domain.OwnerStatusUnverified, domain.OwnerStatusPending))
	got, err = s.Owners().GetOwnerByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OwnerStatusPending, got.Status)

	err = s.Owners().AdvanceStatus(ctx, o.ID, domain.OwnerStatusUnverified, domain.OwnerStatusPending)
	require.ErrorIs(t, err, store.ErrStatusConflict)

	err = s.Owners().AdvanceStatus(ctx, "missing", domain.OwnerStatusUnverified, domain.OwnerStatusPending)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Owners().GetOwnerByUserID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testOTP(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	fresh := NewUser("fresh-otp@example.com")
	stale := NewUser("stale-otp@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, fresh))
	require.NoError(t, s.Users().CreateUser(ctx, stale))

	require.NoError(t, s.Users().SetOTP(ctx, fresh.ID, store.OTPUpdate{
		Hash:      "fresh-fp",
		Purpose:   domain.OTPPurposeRegistration,
		ExpiresAt: now.Add(5 * time.Minute),
	}))
	require.NoError(t, s.Users().SetOTP(ctx, stale.ID, store.OTPUpdate{
		Hash:      "stale-fp",
		Purpose:   domain.OTPPurposePasswordReset,
		ExpiresAt: now.Add(-48 * time.Hour),
	}))

	got, err := s.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.True(t, got.HasOTP(domain.OTPPurposeRegistration))
	require.Equal(t, "fresh-fp", *got.OTPHash)
	require.WithinDuration(t, now.Add(5*time.Minute), *got.OTPExpiresAt, time.Second)

	n, err := s.Users().ClearExpiredOTPs(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err = s.Users().GetUserByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Nil(t, got.OTPHash)

	got, err = s.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPHash)

	require.NoError(t, s.Users().ClearOTP(ctx, fresh.ID))
	got, err = s.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Nil(t, got.OTPHash)
	require.Nil(t, got.OTPPurpose)
	require.Nil(t, got.OTPExpiresAt)

	require.ErrorIs(t, s.Users().SetOTP(ctx, "missing", store.OTPUpdate{Hash: "x", Purpose: domain.OTPPurposeRegistration, ExpiresAt: now}), store.ErrNotFound)
}

func testOTPAttempts(t *testing.T, s store.Store) {
	ctx := context.Background()
	issue := store.OTPUpdate{
		Hash:      "attempts-fp",
		Purpose:   domain.OTPPurposeRegistration,
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	}

	u := NewUser("attempts@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	// Nothing outstanding yet.
	require.ErrorIs(t, s.Users().SpendOTPAttempt(ctx, u.ID, 3), store.ErrAttemptsExhausted)

	require.NoError(t, s.Users().SetOTP(ctx, u.ID, issue))
	for range 3 {
		require.NoError(t, s.Users().SpendOTPAttempt(ctx, u.ID, 3))
	}
	require.ErrorIs(t, s.Users().SpendOTPAttempt(ctx, u.ID, 3), store.ErrAttemptsExhausted)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.OTPAttempts)
	require.NotNil(t, got.OTPHash, "exhausting attempts keeps the code locked, not cleared")

	// A new code starts over.
	require.NoError(t, s.Users().SetOTP(ctx, u.ID, issue))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, got.OTPAttempts)
	require.NoError(t, s.Users().SpendOTPAttempt(ctx, u.ID, 3))

	require.NoError(t, s.Users().ClearOTP(ctx, u.ID))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, got.OTPAttempts)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	u := NewUser("rollback@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		require.NoError(t, tx.Owners().CreateOwner(ctx, NewOwner(u)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByEmail(ctx, u.Email)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Owners().CreateOwner(ctx, NewOwner(u))
	})
	require.NoError(t, err)

	got, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	_, err = s.Owners().GetOwnerByUserID(ctx, got.ID)
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err, "nested transactions are not supported")
}
