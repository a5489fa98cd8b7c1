package domain

import (
	"strings"
	"time"
)

// DefaultUserName is given to accounts created through owner registration
// until the owner fills in their profile.
const DefaultUserName = "New User"

type Role string

const (
	RoleRestaurantOwner Role = "restaurant_owner"
)

// OTPPurpose records which flow an outstanding OTP was issued for. A code
// only satisfies the flow it was issued for.
type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

type User struct {
	ID           string
	Name         string
	Email        string // unique, lower-cased
	Phone        string
	PasswordHash string // argon2id or bcrypt encoded
	Role         Role

	// Outstanding OTP. All three are set together and cleared together.
	OTPHash      *string // sha256 fingerprint, never the code itself
	OTPPurpose   *OTPPurpose
	OTPExpiresAt *time.Time

	// OTPAttempts counts comparisons made against the outstanding OTP. It is
	// reset whenever a code is issued or cleared.
	OTPAttempts int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOTP reports whether an OTP for purpose is outstanding.
func (u User) HasOTP(purpose OTPPurpose) bool {
	return u.OTPHash != nil && u.OTPExpiresAt != nil &&
		u.OTPPurpose != nil && *u.OTPPurpose == purpose
}

// OTPExpired reports whether the outstanding OTP is past its expiry at now.
// The expiry instant itself is still valid.
func (u User) OTPExpired(now time.Time) bool {
	return u.OTPExpiresAt == nil || now.After(*u.OTPExpiresAt)
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
