package domain

import "time"

// OwnerStatus is the approval state of an owner profile.
type OwnerStatus string

const (
	OwnerStatusUnverified OwnerStatus = "UNVERIFIED" // registered, OTP not yet confirmed
	OwnerStatusPending    OwnerStatus = "PENDING"    // OTP confirmed, awaiting admin approval
	OwnerStatusApproved   OwnerStatus = "APPROVED"
	OwnerStatusRejected   OwnerStatus = "REJECTED"
)

func (s OwnerStatus) Valid() bool {
	switch s {
	case OwnerStatusUnverified, OwnerStatusPending, OwnerStatusApproved, OwnerStatusRejected:
		return true
	}
	return false
}

// OwnerProfile is the business account attached 1:1 to a User.
type OwnerProfile struct {
	ID            string
	UserID        string
	BusinessName  string
	BusinessEmail string
	ReferralCode  string // optional
	Status        OwnerStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
