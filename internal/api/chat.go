package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/middleware"
	"github.com/pageza/grocerylist/backend/internal/service"
	"github.com/pageza/grocerylist/backend/internal/types"
)

const chatFailureMessage = "Failed to get recipe suggestions"

type ChatHandler struct {
	chat service.ChatServiceInterface
}

func NewChatHandler(chat service.ChatServiceInterface) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RegisterRoutes mounts the chat route behind the given middleware, which
// normally carries optional auth and the rate limiter.
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.Chat)
	router.POST("/chat", handlers...)
}

// Chat answers with the provider or the fallback generator. Provider
// failures never surface here; an unreadable body is the only 500.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Warn("Unreadable chat request")
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
			Error:   apperrors.Code(apperrors.Internal(err)),
			Message: chatFailureMessage,
		})
		return
	}

	resp, err := h.chat.Respond(c.Request.Context(), req)
	if err != nil {
		if apperrors.Is(err, apperrors.KindInternal) {
			logging.FromContext(c.Request.Context()).WithError(err).Error("Chat failed")
			c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
				Error:   apperrors.Code(err),
				Message: chatFailureMessage,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
