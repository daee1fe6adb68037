// Package cache provides the in-memory TTL cache that shields the remote
// spreadsheet from repeated reads. Entries live only for the configured TTL
// and are dropped on local writes; nothing persists across restarts.
package cache

import (
	"sync"
	"time"
)

// Cache defines a generic cache interface.
type Cache[T any] interface {
	// Get retrieves a value; ok is false on a miss (absent or expired).
	// A miss is not an error, it is the signal to fetch fresh data.
	Get(key string) (T, bool)

	// Set stores a value with a fresh TTL.
	Set(key string, data T)

	// Invalidate removes a key so the next Get is a miss.
	Invalidate(key string)

	// Size returns the current number of live items.
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries eagerly.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic cleanup for a set of registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
	stopOnce    sync.Once
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine and waits for it to finish. Safe to call
// more than once and before StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		if m.started {
			<-m.cleanupDone
		}
	})
}
