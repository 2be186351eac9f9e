package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in-process. Expired entries are dropped lazily
// on read and swept periodically when StartSweeper is running.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m: make(map[string]Session),
	}
}

func (s *MemoryStore) Put(ctx context.Context, sess Session) error {
	s.mu.Lock()
	s.m[sess.ID] = sess
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	now := time.Now()

	s.mu.RLock()
	sess, ok := s.m[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}

	if now.After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()

		return Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()

	return nil
}

// StartSweeper drops expired sessions every interval until ctx is done.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	for id, sess := range s.m {
		if now.After(sess.ExpiresAt) {
			delete(s.m, id)
		}
	}
	s.mu.Unlock()
}
