package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBroker is an in-process Broker. It only reaches subscribers in the
// same process, so the server uses RedisBroker; api, integration and
// realtime tests share this one.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*memorySubscription]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[uuid.UUID]map[*memorySubscription]struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, listID uuid.UUID, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[listID] {
		select {
		case sub.events <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, listID uuid.UUID) (Subscription, error) {
	sub := &memorySubscription{
		broker: b,
		listID: listID,
		events: make(chan Event, subscriptionBuffer),
	}
	b.mu.Lock()
	if b.subs[listID] == nil {
		b.subs[listID] = make(map[*memorySubscription]struct{})
	}
	b.subs[listID][sub] = struct{}{}
	b.mu.Unlock()
	return sub, nil
}

// Subscribers reports how many subscriptions are open for listID. Tests
// use it to wait for a websocket to finish subscribing.
func (b *MemoryBroker) Subscribers(listID uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[listID])
}

type memorySubscription struct {
	broker *MemoryBroker
	listID uuid.UUID
	events chan Event
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	if _, ok := s.broker.subs[s.listID][s]; ok {
		delete(s.broker.subs[s.listID], s)
		close(s.events)
	}
	return nil
}
