package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStatusConflict is returned by a conditional status change when the
	// row is no longer in the expected state.
	ErrStatusConflict = errors.New("store: status conflict")

	// ErrAttemptsExhausted is returned by SpendOTPAttempt once the
	// outstanding OTP has used up its attempts.
	ErrAttemptsExhausted = errors.New("store: otp attempts exhausted")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a transaction-scoped Store
// can be handed to code that should not be able to start its own transaction.
type Store interface {
	Users() Users
	Owners() Owners

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// OTPUpdate is what gets persisted when a code is issued.
type OTPUpdate struct {
	Hash      string
	Purpose   domain.OTPPurpose
	ExpiresAt time.Time
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// SetOTP replaces any outstanding OTP for the user.
	SetOTP(ctx context.Context, userID string, otp OTPUpdate) error

	// ClearOTP removes the outstanding OTP for the user.
	ClearOTP(ctx context.Context, userID string) error

	// SpendOTPAttempt atomically counts one attempt against the outstanding
	// OTP while fewer than limit have been made. It returns
	// ErrAttemptsExhausted when no attempt is left or no OTP is outstanding.
	SpendOTPAttempt(ctx context.Context, userID string, limit int) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// ClearExpiredOTPs clears every OTP that expired before the cutoff and
	// returns the number of users touched.
	ClearExpiredOTPs(ctx context.Context, before time.Time) (int64, error)
}

type Owners interface {
	// CreateOwner inserts a new profile. Returns ErrAlreadyExists when the user
	// already has one or the business email is taken.
	CreateOwner(ctx context.Context, o domain.OwnerProfile) error

	GetOwnerByID(ctx context.Context, id string) (domain.OwnerProfile, error)
	GetOwnerByUserID(ctx context.Context, userID string) (domain.OwnerProfile, error)

	// AdvanceStatus moves the owner from one status to another. It returns
	// ErrStatusConflict when the owner is not currently in from, and
	// ErrNotFound when no such owner exists.
	AdvanceStatus(ctx context.Context, ownerID string, from, to domain.OwnerStatus) error
}
