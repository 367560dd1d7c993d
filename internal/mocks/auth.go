package mocks

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/grocerylist/backend/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

// ClaimsFor builds the claims a valid token for userID would carry.
func ClaimsFor(userID uuid.UUID) *types.TokenClaims {
	return &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Role:             "authenticated",
	}
}
