package notice

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/signupboard/internal/domain"
)

// DefaultDuration is how long a notice stays visible.
const DefaultDuration = 3500 * time.Millisecond

// Area is a single status slot. Safe for concurrent use.
type Area struct {
	clock    clockwork.Clock
	duration time.Duration

	mu       sync.Mutex
	current  domain.Notice
	visible  bool
	lastUsed time.Time
}

// NewArea creates a hidden area.
func NewArea(clock clockwork.Clock, duration time.Duration) *Area {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Area{
		clock:    clock,
		duration: duration,
		lastUsed: clock.Now(),
	}
}

// Show replaces the current message and makes it visible.
func (a *Area) Show(n domain.Notice) {
	if n.Kind == "" {
		n.Kind = domain.NoticeInfo
	}

	a.mu.Lock()
	a.current = n
	a.visible = true
	a.lastUsed = a.clock.Now()
	a.mu.Unlock()

	a.clock.AfterFunc(a.duration, a.hide)
}

func (a *Area) hide() {
	a.mu.Lock()
	a.visible = false
	a.mu.Unlock()
}

// Snapshot returns the last message shown and whether it is still visible.
// A hidden area keeps its last message, like a hidden element keeps its text.
func (a *Area) Snapshot() (domain.Notice, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.visible
}

// Visible returns the current notice, or the zero Notice when hidden.
func (a *Area) Visible() domain.Notice {
	n, ok := a.Snapshot()
	if !ok {
		return domain.Notice{}
	}
	return n
}

func (a *Area) idleSince() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastUsed
}

func (a *Area) touch() {
	a.mu.Lock()
	a.lastUsed = a.clock.Now()
	a.mu.Unlock()
}
