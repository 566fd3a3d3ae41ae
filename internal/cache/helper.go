package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	userKeyPrefix    = "user:%s"
	topicKeyPrefix   = "topic:%s"
	themeKeyPrefix   = "theme:%d"
	ticketKeyPrefix  = "ws_ticket:%s"
	jtiBlacklistPref = "blacklist:%s"
)

const (
	UserTTL  = 5 * time.Minute
	TopicTTL = 10 * time.Minute
)

func UserKey(username string) string { return fmt.Sprintf(userKeyPrefix, username) }
func TopicKey(slug string) string    { return fmt.Sprintf(topicKeyPrefix, slug) }
func ThemeKey(userID uint) string    { return fmt.Sprintf(themeKeyPrefix, userID) }
func TicketKey(ticket string) string { return fmt.Sprintf(ticketKeyPrefix, ticket) }
func BlacklistKey(jti string) string { return fmt.Sprintf(jtiBlacklistPref, jti) }

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err != nil {
		// redis.Nil and transport errors are both treated as a miss;
		// the cache is an optimization, never a source of truth.
		return false, nil
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on miss it calls fetch (which must populate dest),
// then stores the result with ttl (best-effort).
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate deletes a key, tolerating a nil client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops the cached profile view of a user.
func InvalidateUser(ctx context.Context, username string) {
	Invalidate(ctx, UserKey(username))
}
