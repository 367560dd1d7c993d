package api

import (
	"context"
	"errors"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/service"
)

// EventsHandler streams list changes over a websocket. Each connection
// holds its own broker subscription.
type EventsHandler struct {
	lists          service.ListServiceInterface
	broker         realtime.Broker
	originPatterns []string
}

// NewEventsHandler accepts a nil broker; the route then answers 503.
func NewEventsHandler(lists service.ListServiceInterface, broker realtime.Broker, originPatterns []string) *EventsHandler {
	return &EventsHandler{lists: lists, broker: broker, originPatterns: originPatterns}
}

func (h *EventsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/lists/:id/events", h.Stream)
}

func (h *EventsHandler) Stream(c *gin.Context) {
	if h.broker == nil {
		respondError(c, apperrors.Unavailable("Live updates are not configured"))
		return
	}
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	// Checked before the upgrade so a refusal is a plain JSON error.
	if _, err := h.lists.Get(c.Request.Context(), userID, listID); err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.broker.Subscribe(c.Request.Context(), listID)
	if err != nil {
		respondError(c, apperrors.Internal(err))
		return
	}
	defer sub.Close()

	conn, err := ws.Accept(c.Writer, c.Request, &ws.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	log := logging.FromContext(c.Request.Context()).WithField("list_id", listID)
	log.Debug("Event stream opened")

	err = realtime.Stream(c.Request.Context(), conn, sub, func(ev realtime.Event) bool {
		return ev.Revokes(userID)
	})
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case ws.CloseStatus(err) == ws.StatusNormalClosure, ws.CloseStatus(err) == ws.StatusGoingAway:
	default:
		log.WithError(err).Debug("Event stream ended")
	}
}
