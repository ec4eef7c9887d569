package order

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	guardCapacity = 1_000_000
	guardFPR      = 0.001
)

// CheckoutGuard deduplicates checkout submissions by idempotency key. A bloom
// filter gives a cheap definite-no for keys never seen by this process; a
// positive answer is only a maybe and must be confirmed against the order
// repository, which holds the truth across restarts.
type CheckoutGuard struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewCheckoutGuard creates a guard sized for the expected key volume.
func NewCheckoutGuard() *CheckoutGuard {
	return &CheckoutGuard{
		filter: bloom.NewWithEstimates(guardCapacity, guardFPR),
	}
}

// MaybeSeen reports whether the key might have been used before. False means
// definitely not; true requires a repository lookup to confirm.
func (g *CheckoutGuard) MaybeSeen(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.TestString(key)
}

// Mark records the key as used.
func (g *CheckoutGuard) Mark(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter.AddString(key)
}
