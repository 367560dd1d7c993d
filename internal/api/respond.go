package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/middleware"
)

func respondError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// currentUser returns the caller set by the auth middleware.
func currentUser(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, apperrors.Unauthenticated("Authentication required")
	}
	return userID, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperrors.Validation(field + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("Invalid " + field)
	}
	return id, nil
}

// bindJSON decodes the request body. Binding errors are reported with msg
// rather than the validator's field dump.
func bindJSON(c *gin.Context, obj any, msg string) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, apperrors.Validation(msg))
		return false
	}
	return true
}
