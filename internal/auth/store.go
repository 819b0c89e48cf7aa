package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/asfalya/internal/models"
)

// ErrPrincipalNotFound is the store-level miss. The service layer translates
// it so it never reaches a client.
var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalStore is the persistence surface the auth service depends on.
// The production implementation is GormStore; tests substitute a fake.
type PrincipalStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByPhone(phone string) (*models.User, error)
	FindByID(id string) (*models.User, error)
	Save(user *models.User) error

	// SetOTP stores a new activation digest and expiry on the user row,
	// replacing any code issued earlier.
	SetOTP(userID string, digest string, expiresAt time.Time) error

	// ConsumeOTP atomically clears the OTP fields and activates the account,
	// but only if the stored digest still equals expectedDigest. Returns
	// false when another redemption got there first.
	ConsumeOTP(userID string, expectedDigest string) (bool, error)
}

// GormStore implements PrincipalStore over the users table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns a PrincipalStore backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByEmail(email string) (*models.User, error) {
	return s.findOne("email = ?", email)
}

func (s *GormStore) FindByPhone(phone string) (*models.User, error) {
	return s.findOne("phone = ?", phone)
}

func (s *GormStore) FindByID(id string) (*models.User, error) {
	return s.findOne("id = ?", id)
}

func (s *GormStore) findOne(query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.db.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) Save(user *models.User) error {
	return s.db.Save(user).Error
}

func (s *GormStore) SetOTP(userID string, digest string, expiresAt time.Time) error {
	res := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp_hash":       digest,
			"otp_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// ConsumeOTP relies on the row-level update condition for atomicity: two
// concurrent redemptions of the same code race on the WHERE clause and only
// one can match the still-present digest.
func (s *GormStore) ConsumeOTP(userID string, expectedDigest string) (bool, error) {
	res := s.db.Model(&models.User{}).
		Where("id = ? AND otp_hash = ?", userID, expectedDigest).
		Updates(map[string]interface{}{
			"otp_hash":            nil,
			"otp_expires_at":      nil,
			"is_active":           true,
			"must_reset_password": false,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
