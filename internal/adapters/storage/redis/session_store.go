// Package redis persists session history in Redis lists so conversations
// survive restarts and can be shared across instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voyant-travel/voyant-agent/internal/domain"
)

const keyPrefix = "session:"

// SessionStore implements domain.SessionStore over a Redis list per session.
// Append pushes, trims to the newest maxMessages entries and refreshes the
// key's TTL in one pipeline.
type SessionStore struct {
	client      *redis.Client
	maxMessages int
}

func NewSessionStore(client *redis.Client, maxMessages int) *SessionStore {
	return &SessionStore{client: client, maxMessages: maxMessages}
}

// Ping verifies connectivity at startup.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

func (s *SessionStore) History(ctx context.Context, id domain.SessionID) ([]domain.Message, error) {
	raw, err := s.client.LRange(ctx, key(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			// Skip entries written by an incompatible version.
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *SessionStore) Append(ctx context.Context, id domain.SessionID, msgs []domain.Message, ttl time.Duration) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshaling message: %w", err)
		}
		values = append(values, b)
	}

	k := key(id)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, k, values...)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, k, int64(-s.maxMessages), -1)
	}
	if ttl > 0 {
		pipe.Expire(ctx, k, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending to session %s: %w", id, err)
	}
	return nil
}

func key(id domain.SessionID) string {
	return keyPrefix + string(id)
}
