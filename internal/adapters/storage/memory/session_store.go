// Package memory holds the in-process session store used for local runs and
// as the fallback when Redis is not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/voyant-travel/voyant-agent/internal/domain"
)

type entry struct {
	messages  []domain.Message
	expiresAt time.Time
}

// SessionStore implements domain.SessionStore in process memory. Expiry is
// lazy: an expired session is dropped the next time it is touched.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[domain.SessionID]*entry
	maxMessages int

	now func() time.Time
}

func NewSessionStore(maxMessages int) *SessionStore {
	return &SessionStore{
		sessions:    make(map[domain.SessionID]*entry),
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

func (s *SessionStore) History(_ context.Context, id domain.SessionID) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(id)
	if e == nil {
		return []domain.Message{}, nil
	}

	out := make([]domain.Message, len(e.messages))
	copy(out, e.messages)
	return out, nil
}

func (s *SessionStore) Append(_ context.Context, id domain.SessionID, msgs []domain.Message, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(id)
	if e == nil {
		e = &entry{}
		s.sessions[id] = e
	}

	e.messages = append(e.messages, msgs...)
	if s.maxMessages > 0 && len(e.messages) > s.maxMessages {
		e.messages = e.messages[len(e.messages)-s.maxMessages:]
	}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	} else {
		e.expiresAt = time.Time{}
	}
	return nil
}

// live returns the entry for id, evicting it first if expired. Caller holds
// s.mu.
func (s *SessionStore) live(id domain.SessionID) *entry {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return e
}
