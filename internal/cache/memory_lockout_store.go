package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// maxMemoryEntries caps the in-memory store before a forced sweep.
const maxMemoryEntries = 10000

type memoryEntry struct {
	state     LockoutState
	expiresAt time.Time
}

// MemoryLockoutStore keeps lockout counters in process memory.
// It is used when Redis is not configured and is only correct for a single
// API instance.
type MemoryLockoutStore struct {
	// entries maps lockout keys to their counters
	entries map[string]*memoryEntry

	// mu protects concurrent access to the entries map
	mu sync.RWMutex

	cleanupInterval time.Duration
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewMemoryLockoutStore creates an in-memory store and starts its cleanup routine.
//
// Parameters:
//   - cleanupInterval: How often expired counters are removed
//
// Returns:
//   - A store that must be closed with Close
func NewMemoryLockoutStore(cleanupInterval time.Duration) *MemoryLockoutStore {
	store := &MemoryLockoutStore{
		entries:         make(map[string]*memoryEntry),
		cleanupInterval: cleanupInterval,
		now:             time.Now,
		stop:            make(chan struct{}),
	}

	go store.cleanupRoutine()

	return store
}

func (s *MemoryLockoutStore) Get(_ context.Context, key string) (LockoutState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		return LockoutState{}, nil
	}
	return entry.state, nil
}

func (s *MemoryLockoutStore) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &memoryEntry{expiresAt: now.Add(lockoutWindow)}
		s.entries[key] = entry
	}

	entry.state.FailedCount++
	if entry.state.FailedCount >= threshold {
		lockedUntil := now.Add(lockoutWindow).UTC()
		entry.state.LockedUntil = &lockedUntil
		entry.expiresAt = lockedUntil
	}

	return entry.state, nil
}

func (s *MemoryLockoutStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup routine.
func (s *MemoryLockoutStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryLockoutStore) cleanupRoutine() {
	ticker := time.NewTicker(s.cleanupInterval)
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

// cleanup removes expired counters.
func (s *MemoryLockoutStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}

	if len(s.entries) > maxMemoryEntries {
		log.Warn().Int("entries", len(s.entries)).Msg("Lockout store growing too large, resetting")
		s.entries = make(map[string]*memoryEntry)
	}
}
