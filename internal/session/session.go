// Package session keeps the transient per-cart-session state: the checkout
// selection and the applied coupon. Neither survives a restart. Selection is
// re-derived as select-all from the loaded cart, and a coupon must be
// re-applied.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/freshfold/laundrokart/internal/domain/cart"
	"github.com/freshfold/laundrokart/internal/domain/pricing"
)

// Entry is the transient state of one cart session. Requests for the same
// session serialize on the entry lock, so cart mutations and their
// persistence writes keep their relative order.
type Entry struct {
	Selection cart.Selection
	Coupon    pricing.Coupon

	mu       sync.Mutex
	lastSeen time.Time
}

// Manager tracks session entries with idle expiry.
type Manager struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewManager creates a Manager that forgets sessions idle for longer than ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:     ttl,
		entries: make(map[string]*Entry),
	}
}

// Acquire returns the locked entry for the session, creating one with the
// select-all default for the given cart if none exists or the previous one
// expired. The returned release func must be called when the request is done
// mutating the entry.
func (m *Manager) Acquire(sessionID string, c *cart.Cart) (*Entry, func()) {
	m.mu.Lock()
	now := time.Now()
	e, ok := m.entries[sessionID]
	if !ok || now.Sub(e.lastSeen) > m.ttl {
		e = &Entry{Selection: cart.DefaultSelection(c)}
		m.entries[sessionID] = e
	}
	e.lastSeen = now
	m.mu.Unlock()

	e.mu.Lock()
	return e, e.mu.Unlock
}

// Drop removes a session entry, e.g. after checkout clears the cart.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
}

// StartCleanup launches a goroutine that evicts idle sessions until ctx is
// cancelled.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.evictIdle(now)
			}
		}
	}()
}

func (m *Manager) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.entries, id)
		}
	}
}
