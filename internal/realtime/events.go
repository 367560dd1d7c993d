// Package realtime delivers list change notifications to connected
// browsers. Events travel over redis pub/sub so every API instance sees
// them; each websocket connection holds its own subscription.
package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	EntityItem   = "item"
	EntityMember = "member"
	EntityList   = "list"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is a change notification for one list.
type Event struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id"`
	ListID string `json:"list_id"`
}

func NewEvent(entity, action string, id, listID uuid.UUID) Event {
	return Event{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id.String(),
		ListID: listID.String(),
	}
}

// Revokes reports whether the event ends userID's access to the list: the list
// itself was deleted or userID was removed from it.
func (e Event) Revokes(userID uuid.UUID) bool {
	if e.Action != ActionDeleted {
		return false
	}
	switch e.Entity {
	case EntityList:
		return true
	case EntityMember:
		return e.ID == userID.String()
	}
	return false
}

// Channel is the pub/sub channel for a list.
func Channel(listID uuid.UUID) string {
	return "grocerylist:list:" + listID.String()
}

type Publisher interface {
	Publish(ctx context.Context, listID uuid.UUID, ev Event) error
}

// Subscription yields events for one list until closed.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

type Broker interface {
	Publisher
	Subscribe(ctx context.Context, listID uuid.UUID) (Subscription, error)
}

// NopPublisher drops events. It is used when redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, uuid.UUID, Event) error { return nil }
