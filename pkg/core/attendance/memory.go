package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// DefaultRevertWindow is how long an override is shown before the stored
// status takes over again
const DefaultRevertWindow = 3 * time.Second

// MemoryOverlay is an in-process Overlay backed by a TTL cache. It is safe
// for concurrent use.
type MemoryOverlay struct {
	window time.Duration
	cache  *ttlcache.Cache[Key, model.AttendanceStatus]

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewMemoryOverlay creates an overlay whose overrides expire after window.
// A window of zero or less uses DefaultRevertWindow. Close must be called to
// stop the expiry loop.
func NewMemoryOverlay(window time.Duration) *MemoryOverlay {
	if window <= 0 {
		window = DefaultRevertWindow
	}
	m := &MemoryOverlay{
		window: window,
		cache: ttlcache.New[Key, model.AttendanceStatus](
			ttlcache.WithTTL[Key, model.AttendanceStatus](window),
			// reads must not extend the revert window
			ttlcache.WithDisableTouchOnHit[Key, model.AttendanceStatus](),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(m.done)
		m.cache.Start()
	}()
	return m
}

// Set records an override, replacing and restarting any pending one for key
func (m *MemoryOverlay) Set(ctx context.Context, key Key, status model.AttendanceStatus) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil
	}
	m.cache.Set(key, status, ttlcache.DefaultTTL)
	return nil
}

// Get returns the pending override for key
func (m *MemoryOverlay) Get(ctx context.Context, key Key) (model.AttendanceStatus, bool, error) {
	item := m.cache.Get(key)
	if item == nil || item.IsExpired() {
		return "", false, nil
	}
	return item.Value(), true, nil
}

// Len returns the number of pending overrides
func (m *MemoryOverlay) Len() int {
	return m.cache.Len()
}

// Close stops the expiry loop and drops all overrides
func (m *MemoryOverlay) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.cache.Stop()
	<-m.done
	m.cache.DeleteAll()
}
