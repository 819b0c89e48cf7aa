package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNoIdentifier is returned when a user carries neither an email nor a
// phone number.
var ErrNoIdentifier = errors.New("user must have an email or a phone number")

// User is an authenticatable account: a customer or an administrator.
// Email and phone are both optional, but at least one must be present and
// each is globally unique. Policy attributes live on the user row because a
// customer holds at most one policy.
type User struct {
	BaseModel
	Email        *string `gorm:"uniqueIndex" json:"email"`
	Phone        *string `gorm:"uniqueIndex" json:"phone"`
	FullName     string  `json:"full_name"`
	PasswordHash string  `json:"-"`
	IsActive     bool    `json:"is_active"`
	IsAdmin      bool    `json:"is_admin"`

	// Set for bulk-imported accounts: the user must complete OTP activation
	// and choose a password before the account can authenticate.
	MustResetPassword bool `json:"must_reset_password"`

	// Activation/recovery code. Only the digest is stored; the plaintext
	// code leaves the process via the email or SMS collaborator.
	OTPHash      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	Premium      float64    `json:"premium"`
	PolicyType   *string    `json:"policy_type"`
	PolicyNumber *string    `json:"policy_number"`
	PolicyExpiry *time.Time `json:"policy_expiry"`
	VehiclePlate *string    `json:"vehicle_plate"`
}

// BeforeSave enforces the identifier rule at the data-model boundary rather
// than relying on callers to check it.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if isEmpty(u.Email) && isEmpty(u.Phone) {
		return ErrNoIdentifier
	}
	return nil
}

func isEmpty(s *string) bool {
	return s == nil || *s == ""
}
