package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles recognized in access tokens.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Claims are the JWT claims carried by access tokens. Identity issuance is
// an external collaborator; this service only validates and reads tokens.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	jwt.RegisteredClaims
}

// JWTManager validates and issues HMAC-signed access tokens.
type JWTManager struct {
	secret        []byte
	accessTTL     time.Duration
	signingMethod jwt.SigningMethod
}

// NewJWTManager creates a JWTManager with the given secret and access
// token lifetime.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessTTL:     accessTTL,
		signingMethod: jwt.SigningMethodHS256,
	}
}

// Generate issues a signed access token (used by tests and tooling; the
// identity provider issues production tokens with the shared secret).
func (m *JWTManager) Generate(userID uuid.UUID, role, email, name string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			Subject:   userID.String(),
		},
	}
	return jwt.NewWithClaims(m.signingMethod, claims).SignedString(m.secret)
}

// Verify parses and validates a token, returning its claims.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != m.signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
