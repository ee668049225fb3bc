package notice

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/signupboard/internal/adapter/metrics"
	"github.com/pscheid92/signupboard/internal/domain"
)

// Registry maps visitor IDs to their status areas.
type Registry struct {
	clock    clockwork.Clock
	duration time.Duration
	ttl      time.Duration
	metrics  *metrics.NoticeMetrics

	mu    sync.Mutex
	areas map[uuid.UUID]*Area
}

// NewRegistry creates a registry whose areas show notices for duration and
// are evicted after ttl without use. m may be nil.
func NewRegistry(clock clockwork.Clock, duration, ttl time.Duration, m *metrics.NoticeMetrics) *Registry {
	return &Registry{
		clock:    clock,
		duration: duration,
		ttl:      ttl,
		metrics:  m,
		areas:    make(map[uuid.UUID]*Area),
	}
}

// Area returns the visitor's area, creating it on first use.
func (r *Registry) Area(visitorID uuid.UUID) *Area {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.areas[visitorID]
	if !ok {
		a = NewArea(r.clock, r.duration)
		r.areas[visitorID] = a
		if r.metrics != nil {
			r.metrics.AreasCurrent.Set(float64(len(r.areas)))
		}
	} else {
		a.touch()
	}
	return a
}

// Show displays n in the visitor's area.
func (r *Registry) Show(visitorID uuid.UUID, n domain.Notice) {
	if n.IsZero() {
		return
	}
	r.Area(visitorID).Show(n)
	if r.metrics != nil {
		r.metrics.ShownTotal.WithLabelValues(string(n.Kind)).Inc()
	}
}

// Visible returns the visitor's visible notice without creating an area.
func (r *Registry) Visible(visitorID uuid.UUID) domain.Notice {
	r.mu.Lock()
	a, ok := r.areas[visitorID]
	r.mu.Unlock()
	if !ok {
		return domain.Notice{}
	}
	return a.Visible()
}

func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.areas)
}

// EvictIdle removes areas unused for longer than the TTL and returns the count evicted.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	evicted := 0
	for id, a := range r.areas {
		if now.Sub(a.idleSince()) > r.ttl {
			delete(r.areas, id)
			evicted++
		}
	}

	if r.metrics != nil {
		r.metrics.AreasCurrent.Set(float64(len(r.areas)))
		r.metrics.Evictions.Add(float64(evicted))
	}
	return evicted
}

// StartEvictionTimer starts a background goroutine that periodically evicts idle areas.
// Returns a stop function that should be called to clean up the goroutine.
func (r *Registry) StartEvictionTimer(interval time.Duration) func() {
	ticker := r.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if evicted := r.EvictIdle(); evicted > 0 {
					slog.Debug("Evicted idle notice areas", "count", evicted, "remaining", r.Size())
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
