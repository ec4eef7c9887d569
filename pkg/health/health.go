// Package health serves Kubernetes-style liveness and readiness probes.
//
// Every registered check runs on its own ticker goroutine. A check flips to
// unhealthy only after failAfter consecutive failures and recovers after
// okAfter consecutive passes, so a single slow ping does not bounce the pod.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// Check reports nil when the probed component is healthy.
type Check func(ctx context.Context) error

const (
	defaultFailAfter = 3
	defaultOKAfter   = 1
)

// probe is one registered check plus its debounce state. The fails/oks
// counters are touched only by the single tick goroutine; down and lastErr
// are shared with HTTP handlers and use atomics.
type probe struct {
	name    string
	timeout time.Duration
	fn      Check

	failAfter int
	okAfter   int
	fails     int
	oks       int

	down    atomic.Bool
	lastErr atomic.Pointer[error]
}

func (p *probe) tick(ctx context.Context) {
	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.fn(tctx)
	cancel()

	p.lastErr.Store(&err)

	if err != nil {
		p.oks = 0
		if p.fails++; p.fails >= p.failAfter {
			p.down.Store(true)
		}
		return
	}

	p.fails = 0
	if p.oks++; p.oks >= p.okAfter {
		p.down.Store(false)
	}
}

func (p *probe) failure() (string, bool) {
	if !p.down.Load() {
		return "", false
	}
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error(), true
	}
	return "check is unhealthy", true
}

// probeSet is a registration-time list of probes. The lock only guards the
// slice; probe state has its own synchronization.
type probeSet struct {
	mu     sync.RWMutex
	probes []*probe
}

func (s *probeSet) add(name string, timeout time.Duration, fn Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes = append(s.probes, &probe{
		name:      name,
		timeout:   timeout,
		fn:        fn,
		failAfter: defaultFailAfter,
		okAfter:   defaultOKAfter,
	})
}

func (s *probeSet) snapshot() []*probe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*probe, len(s.probes))
	copy(out, s.probes)
	return out
}

// failures returns check name to error message for every probe currently down.
func (s *probeSet) failures() map[string]string {
	var out map[string]string
	for _, p := range s.snapshot() {
		if msg, bad := p.failure(); bad {
			if out == nil {
				out = make(map[string]string)
			}
			out[p.name] = msg
		}
	}
	return out
}

// Health tracks liveness and readiness probes for one service.
type Health struct {
	ready atomic.Bool
	live  probeSet
	deps  probeSet

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a Health in the not-ready state. Call SetReady(true) once
// startup finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a process-level check (goroutine leaks, GC
// pressure). A failing liveness check means the pod should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn Check) {
	h.live.add(name, timeout, fn)
}

// AddReadinessCheck registers a dependency check (database, downstream
// service). A failing readiness check only stops new traffic.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn Check) {
	h.deps.add(name, timeout, fn)
}

// Start launches one ticker goroutine per registered probe. Register all
// checks before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	for _, p := range append(h.live.snapshot(), h.deps.snapshot()...) {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.tick(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.tick(ctx)
				}
			}
		}(p)
	}
}

// SetReady flips the manual readiness gate. Shutdown sets it to false ahead
// of draining so the load balancer stops routing new requests.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// passes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.deps.failures()) == 0
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// LiveEndpoint answers /livez: 200 while every liveness probe passes, 503
// with the failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.live.failures())
}

// ReadyEndpoint answers /readyz: 200 only when SetReady(true) was called and
// every readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.deps.failures()
	if !h.ready.Load() {
		if failures == nil {
			failures = make(map[string]string)
		}
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			names := make([]string, 0, len(failures))
			for name := range failures {
				names = append(names, name)
			}
			sort.Strings(names)
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					msg := failures[name]
					e.Field(name, func(e *jx.Encoder) { e.Str(msg) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	if len(failures) == 0 {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = w.Write(e.Bytes())
}
