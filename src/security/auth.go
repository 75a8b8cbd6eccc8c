// backend/src/security/auth.go
package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and validates the HS256 bearer tokens that carry the
// tenant (organization) scope for every API call.
type AuthService struct {
	secret []byte
	expiry time.Duration
}

func NewAuthService(secret string, expiry time.Duration) *AuthService {
	return &AuthService{secret: []byte(secret), expiry: expiry}
}

type tenantClaims struct {
	TenantID string `json:"tid"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken mints an access token scoped to one tenant.
func (a *AuthService) IssueToken(tenantID, email string) (string, error) {
	now := time.Now()
	claims := tenantClaims{
		TenantID: tenantID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken parses and verifies a token and returns its tenant ID.
func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tenantClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*tenantClaims)
	if !ok || !token.Valid || claims.TenantID == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.TenantID, nil
}
