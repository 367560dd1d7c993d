package realtime

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
)

var pingInterval = 30 * time.Second

// Stream forwards sub's events to conn until either side goes away.
// Incoming messages are read and discarded so close frames are noticed.
// When revoked reports true for an event, that event is delivered and the
// connection is closed with StatusPolicyViolation. A nil revoked never closes.
func Stream(ctx context.Context, conn *ws.Conn, sub Subscription, revoked func(Event) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return conn.Close(ws.StatusGoingAway, "subscription closed")
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if err := conn.Write(ctx, ws.MessageText, data); err != nil {
				return err
			}
			if revoked != nil && revoked(ev) {
				return conn.Close(ws.StatusPolicyViolation, "access revoked")
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
