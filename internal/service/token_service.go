package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"complitracker/internal/config"
	"complitracker/internal/domain"
)

// Claims represents the JWT claims issued by the gateway's auth service.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
}

// TokenValidator verifies gateway-issued JWTs. Token issuance lives in the
// auth service; this core only shares the signing secret.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenValidator struct {
	cfg config.JWTConfig
}

// NewTokenValidator creates a TokenValidator from JWT settings.
func NewTokenValidator(cfg config.JWTConfig) TokenValidator {
	return &tokenValidator{cfg: cfg}
}

func (v *tokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.cfg.Secret), nil
	}, jwt.WithIssuer(v.cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
