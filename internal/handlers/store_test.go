package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/models"
)

// memoryStore is an in-memory PrincipalStore shared by the handler tests.
type memoryStore struct {
	saved     []*models.User
	failSaves map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{failSaves: make(map[string]error)}
}

func (m *memoryStore) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.saved {
		if u.Email != nil && *u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrPrincipalNotFound
}

func (m *memoryStore) FindByPhone(phone string) (*models.User, error) {
	for _, u := range m.saved {
		if u.Phone != nil && *u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrPrincipalNotFound
}

func (m *memoryStore) FindByID(id string) (*models.User, error) {
	for _, u := range m.saved {
		if u.ID.String() == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrPrincipalNotFound
}

func (m *memoryStore) Save(user *models.User) error {
	if user.Email != nil {
		if err := m.failSaves[*user.Email]; err != nil {
			return err
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for i, existing := range m.saved {
		if existing.ID == user.ID {
			copied := *user
			m.saved[i] = &copied
			return nil
		}
	}
	copied := *user
	m.saved = append(m.saved, &copied)
	return nil
}

func (m *memoryStore) SetOTP(userID string, digest string, expiresAt time.Time) error {
	for _, u := range m.saved {
		if u.ID.String() == userID {
			u.OTPHash = &digest
			u.OTPExpiresAt = &expiresAt
			return nil
		}
	}
	return auth.ErrPrincipalNotFound
}

func (m *memoryStore) ConsumeOTP(userID string, expectedDigest string) (bool, error) {
	for _, u := range m.saved {
		if u.ID.String() == userID {
			if u.OTPHash == nil || *u.OTPHash != expectedDigest {
				return false, nil
			}
			u.OTPHash = nil
			u.OTPExpiresAt = nil
			u.IsActive = true
			u.MustResetPassword = false
			return true, nil
		}
	}
	return false, nil
}
