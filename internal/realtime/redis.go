package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const subscriptionBuffer = 16

type RedisBroker struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewRedisBroker(client *redis.Client, log logrus.FieldLogger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, listID uuid.UUID, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(listID), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Subscribe blocks until redis confirms the subscription.
func (b *RedisBroker) Subscribe(ctx context.Context, listID uuid.UUID) (Subscription, error) {
	ps := b.client.Subscribe(ctx, Channel(listID))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan Event, subscriptionBuffer),
		log:    b.log.WithField("list_id", listID),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan Event
	log    logrus.FieldLogger
}

func (s *redisSubscription) forward() {
	defer close(s.events)
	for msg := range s.ps.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.log.WithError(err).Warn("dropping malformed list event")
			continue
		}
		select {
		case s.events <- ev:
		default:
			// Slow consumer; drop rather than block the redis reader.
		}
	}
}

func (s *redisSubscription) Events() <-chan Event {
	return s.events
}

func (s *redisSubscription) Close() error {
	return s.ps.Close()
}
