package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pageza/grocerylist/backend/internal/types"
)

const TestJWTSecret = "test-jwt-secret"

// CreateToken signs an access token for userID the way the hosted auth
// provider does.
func CreateToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	return SignClaims(t, TestJWTSecret, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{"authenticated"},
		},
		Email: userID.String() + "@example.com",
		Role:  "authenticated",
	})
}

// CreateExpiredToken signs a token that expired a minute ago.
func CreateExpiredToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	return SignClaims(t, TestJWTSecret, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
}

func SignClaims(t *testing.T, secret string, claims *types.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
