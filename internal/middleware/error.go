package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/logging"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewErrorResponse maps err to its public code and message.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error:   apperrors.Code(err),
		Message: apperrors.Public(err),
	}
}

// RespondError writes err as JSON. Internal errors are logged with their
// cause and reach the client only as the generic message.
func RespondError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).WithError(err).Error("Request failed")
	}
	c.JSON(status, NewErrorResponse(err))
}

// AbortWithError responds with err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

// Recovery turns a panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := apperrors.Internal(fmt.Errorf("panic: %v", rec))
				if c.Writer.Written() {
					logging.FromContext(c.Request.Context()).WithError(err).Error("Panic after response was written")
					c.Abort()
					return
				}
				AbortWithError(c, err)
			}
		}()
		c.Next()
	}
}
