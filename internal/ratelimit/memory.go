package ratelimit

import (
	"context"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

type clientWindow struct {
	timestamps []time.Time
}

// MemoryStore keeps per-key timestamps in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	// longest window seen, used by cleanup
	maxWindow time.Duration
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewMemoryStore creates a MemoryStore and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemoryStore() *MemoryStore {
	s := newMemoryStore(time.Now)
	go s.cleanupLoop()
	return s
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		clients: make(map[string]*clientWindow),
		now:     now,
		stop:    make(chan struct{}),
	}
}

var _ Store = (*MemoryStore)(nil)

// Allow prunes timestamps outside window and records a hit when under limit.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.now()
	windowStart := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	if window > s.maxWindow {
		s.maxWindow = window
	}

	cw, ok := s.clients[key]
	if !ok {
		cw = &clientWindow{}
		s.clients[key] = cw
	}
	cw.timestamps = prune(cw.timestamps, windowStart)

	if len(cw.timestamps) >= limit {
		oldest := cw.timestamps[0]
		return Result{
			Allowed:    false,
			Count:      len(cw.timestamps),
			RetryAfter: oldest.Add(window).Sub(now),
		}, nil
	}

	cw.timestamps = append(cw.timestamps, now)
	return Result{Allowed: true, Count: len(cw.timestamps)}, nil
}

// prune filters in place on the shared backing array.
func prune(ts []time.Time, windowStart time.Time) []time.Time {
	valid := ts[:0]
	for _, t := range ts {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	return valid
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes keys with no timestamps left in the longest window.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	windowStart := s.now().Add(-s.maxWindow)
	for key, cw := range s.clients {
		cw.timestamps = prune(cw.timestamps, windowStart)
		if len(cw.timestamps) == 0 {
			delete(s.clients, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
