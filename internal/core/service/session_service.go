package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifeflow/blood-bank/internal/core/domain"
	"github.com/lifeflow/blood-bank/internal/core/ports"
)

// SessionService mints and verifies the signed identity tokens that stand in
// for the donor's phone number on the wire. The raw phone never travels as a
// bearer value; the token's subject claim carries it instead, with the same
// 2-day validity window the original cookie contract defines.
type SessionService struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewSessionService(secret string, tokenTTL time.Duration) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = ports.SessionTTL
	}
	return &SessionService{secret: []byte(secret), tokenTTL: tokenTTL}
}

// Issue mints an HS256 token whose subject is the donor's phone number.
func (s *SessionService) Issue(phone string) (string, error) {
	claims := jwt.MapClaims{
		"sub": phone,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded phone number.
func (s *SessionService) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidToken
	}

	phone, ok := claims["sub"].(string)
	if !ok || phone == "" {
		return "", domain.ErrInvalidToken
	}
	return phone, nil
}
