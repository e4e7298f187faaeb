// Package auth issues and verifies member tokens and tracks logged out ones.
package auth

import (
	"errors"
	"fmt"
	"time"

	"spotboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. It carries only the member id; role and
// nickname are always read from the loaded member.
type Claims struct {
	MemberID uint `json:"id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 member tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for memberID and its expiry.
func (t *Tokens) Issue(memberID uint) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		MemberID: memberID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry. Known failures come back
// as 401 AppErrors; anything else is returned as is.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.MemberID == 0 {
		return nil, models.NewAuthError(models.CodeMalformedToken, "Token has no member id")
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return models.NewAuthError(models.CodeInvalidSignature, "Token signature is invalid")
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.NewAuthError(models.CodeExpiredToken, "Token has expired")
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return models.NewAuthError(models.CodeMalformedToken, "Token is malformed")
	}
	return fmt.Errorf("verify token: %w", err)
}
