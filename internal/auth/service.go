package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/example/asfalya/internal/models"
)

// OTPWindow is how long an activation code stays redeemable.
const OTPWindow = 15 * time.Minute

// Service composes the hasher, token issuer and OTP generator over a
// principal store. All operations are stateless apart from reads and writes
// through the store.
type Service struct {
	store  PrincipalStore
	hasher *Hasher
	tokens *TokenIssuer
}

// NewService wires the auth service together.
func NewService(store PrincipalStore, hasher *Hasher, tokens *TokenIssuer) *Service {
	return &Service{store: store, hasher: hasher, tokens: tokens}
}

// Tokens exposes the issuer for the session middleware.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Authenticate resolves a login identifier (email first, then phone) and
// verifies the presented secret. Every failure collapses into
// ErrInvalidCredentials so callers cannot probe which identifiers exist.
// Accounts awaiting activation fail with ErrNotActivated, but only after the
// secret verified.
func (s *Service) Authenticate(identifier, secret string) (*models.User, error) {
	user, err := s.Resolve(identifier)
	if err != nil {
		if err == ErrPrincipalNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(secret, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive || user.MustResetPassword {
		return nil, ErrNotActivated
	}

	return user, nil
}

// Resolve looks a principal up by email or phone without verifying anything.
func (s *Service) Resolve(identifier string) (*models.User, error) {
	user, err := s.store.FindByEmail(identifier)
	if err == nil {
		return user, nil
	}
	if err != ErrPrincipalNotFound {
		return nil, err
	}
	return s.store.FindByPhone(identifier)
}

// Register creates a new inactive principal. At least one of email and phone
// must be non-empty; collisions on either fail with ErrDuplicateIdentifier.
func (s *Service) Register(email, phone, fullName, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return nil, models.ErrNoIdentifier
	}

	if email != "" {
		if _, err := s.store.FindByEmail(email); err == nil {
			return nil, ErrDuplicateIdentifier
		} else if err != ErrPrincipalNotFound {
			return nil, err
		}
	}
	if phone != "" {
		if _, err := s.store.FindByPhone(phone); err == nil {
			return nil, ErrDuplicateIdentifier
		} else if err != ErrPrincipalNotFound {
			return nil, err
		}
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        optional(email),
		Phone:        optional(phone),
		FullName:     fullName,
		PasswordHash: digest,
		IsActive:     false,
	}
	if err := s.store.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Import creates an inactive principal for a bulk-imported customer. The
// account gets a random unusable password and must complete OTP activation
// before first login; the import sheets never carry credentials.
func (s *Service) Import(user *models.User) error {
	placeholder := make([]byte, 32)
	if _, err := rand.Read(placeholder); err != nil {
		return err
	}

	digest, err := s.hasher.Hash(hex.EncodeToString(placeholder))
	if err != nil {
		return err
	}

	user.PasswordHash = digest
	user.IsActive = false
	user.MustResetPassword = true
	return s.store.Save(user)
}

// RequestOTP generates a fresh activation code for the principal behind
// identifier, persists its digest and expiry, and returns the plaintext code
// together with the principal so the caller can hand it to a delivery
// collaborator. The plaintext is never persisted.
func (s *Service) RequestOTP(identifier string) (*models.User, string, error) {
	user, err := s.Resolve(identifier)
	if err != nil {
		return nil, "", err
	}

	code, err := GenerateOTP(OTPLength)
	if err != nil {
		return nil, "", err
	}

	digest, err := s.hasher.Hash(code)
	if err != nil {
		return nil, "", err
	}

	if err := s.store.SetOTP(user.ID.String(), digest, time.Now().Add(OTPWindow)); err != nil {
		return nil, "", err
	}

	return user, code, nil
}

// RedeemOTP verifies a presented activation code and, exactly once, marks
// the principal active and clears the code. A second redemption after
// success fails with ErrOtpConsumed.
func (s *Service) RedeemOTP(identifier, code string) (*models.User, error) {
	user, err := s.Resolve(identifier)
	if err != nil {
		return nil, err
	}

	if user.OTPHash == nil {
		return nil, ErrOtpConsumed
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return nil, ErrOtpExpired
	}
	if !s.hasher.Verify(code, *user.OTPHash) {
		return nil, ErrOtpMismatch
	}

	consumed, err := s.store.ConsumeOTP(user.ID.String(), *user.OTPHash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// A concurrent redemption cleared the digest between our read and
		// the conditional update.
		return nil, ErrOtpConsumed
	}

	user.IsActive = true
	user.MustResetPassword = false
	user.OTPHash = nil
	user.OTPExpiresAt = nil
	return user, nil
}

// SetPassword replaces the principal's password digest.
func (s *Service) SetPassword(user *models.User, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user.PasswordHash = digest
	return s.store.Save(user)
}

// Login authenticates and issues a session token whose subject is the
// identifier the caller logged in with.
func (s *Service) Login(identifier, secret string) (*models.User, string, error) {
	user, err := s.Authenticate(identifier, secret)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(identifier, SessionTokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
