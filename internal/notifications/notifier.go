// Package notifications delivers notification events to connected clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// Event is the payload pushed over websockets when something happens to a
// user's posts or account.
type Event struct {
	ID            uint      `json:"id"`
	ActorUsername string    `json:"actor_username"`
	Verb          string    `json:"verb"`
	PostID        *uint     `json:"post_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventFromNotification builds the wire event for a stored notification.
// The Actor association must be loaded.
func EventFromNotification(n *models.Notification) Event {
	return Event{
		ID:            n.ID,
		ActorUsername: n.Actor.Username,
		Verb:          n.Verb,
		PostID:        n.PostID,
		CreatedAt:     n.CreatedAt,
	}
}

// Notifier publishes notification events into per-user Redis channels so any
// server instance can fan them out to its websocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier backed by the given Redis client. A nil
// client turns every publish into a no-op, which keeps single-node and test
// setups working without Redis.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event to the recipient's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, userChannelPrefix+strconv.FormatUint(uint64(userID), 10), payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return err
	}
	observability.NotificationsPublished.WithLabelValues(event.Verb).Inc()
	return nil
}

// userIDFromChannel extracts the recipient id from a user channel name.
func userIDFromChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// StartSubscriber subscribes to all user channels and forwards each payload
// to the hub until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, hub *Hub) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, fmt.Sprintf("%s*", userChannelPrefix))
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in notification subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					if userID, ok := userIDFromChannel(msg.Channel); ok {
						hub.Broadcast(userID, []byte(msg.Payload))
					}
				}()
			}
		}
	}()

	return nil
}
