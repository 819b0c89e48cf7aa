package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes.
const (
	SessionTokenTTL = 60 * time.Minute
	ShortTokenTTL   = 15 * time.Minute
)

// TokenIssuer signs and verifies bearer tokens carrying a subject
// identifier. The signing secret is injected once at construction and never
// changes within a process lifetime; tokens issued before a secret rotation
// become unverifiable after it.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer returns a TokenIssuer signing with secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue returns a signed HS256 token with the given subject and an absolute
// expiry of now+ttl. A zero ttl falls back to ShortTokenTTL.
func (t *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = ShortTokenTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify validates the token string and returns its subject. Expired tokens
// fail with ErrTokenExpired; malformed tokens and signature mismatches fail
// with ErrTokenInvalid. A token signed with the wrong secret is always
// ErrTokenInvalid, even if it is also past its expiry.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		// Signature integrity outranks expiry in the error mapping.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return "", ErrTokenInvalid
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
