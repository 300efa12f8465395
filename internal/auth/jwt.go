package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleViewer may read the diagnostics API.
const RoleViewer = "viewer"

// ErrNoSecret is returned when a Validator is created without a secret.
var ErrNoSecret = errors.New("jwt secret is empty")

// JWTClaims represents the claims in a diagnostics token
type JWTClaims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Validator issues and checks HS256 tokens signed with one secret.
type Validator struct {
	secret []byte
	now    func() time.Time
}

func NewValidator(secret string) (*Validator, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Validator{secret: []byte(secret), now: time.Now}, nil
}

// GenerateToken generates a token for clientID valid for ttl
func (v *Validator) GenerateToken(clientID, role string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := &JWTClaims{
		ClientID: clientID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ValidateToken validates a token and returns its claims
func (v *Validator) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
