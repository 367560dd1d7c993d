package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/service"
	"github.com/pageza/grocerylist/backend/internal/types"
)

const (
	// ContextUserID holds the caller's uuid.UUID.
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// tokenFromRequest prefers a well-formed Bearer header and otherwise uses
// the session cookie. A malformed header is only an error when there is
// no cookie to fall back to.
func tokenFromRequest(c *gin.Context, cookieName string) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), nil
		}
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	if authHeader != "" {
		return "", apperrors.Unauthenticated("Invalid authorization header format")
	}
	return "", apperrors.Unauthenticated("Authentication required")
}

func authenticate(c *gin.Context, validator TokenValidator, cookieName string) error {
	token, err := tokenFromRequest(c, cookieName)
	if err != nil {
		return err
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		if errors.Is(err, service.ErrExpiredToken) {
			return apperrors.Unauthenticated("Session has expired, please sign in again")
		}
		return apperrors.Unauthenticated("Invalid or expired token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperrors.Unauthenticated("Invalid or expired token")
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextClaims, claims)
	return nil
}

// AuthMiddleware rejects requests without a valid bearer token or session
// cookie.
func AuthMiddleware(validator TokenValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, validator, cookieName); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(validator TokenValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = authenticate(c, validator, cookieName)
		c.Next()
	}
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
