// Package ticker drives the clock: once per interval it refreshes the
// PeriodClock and publishes a Snapshot.
package ticker

import (
	"context"
	"sync"
	"time"

	"classclock/internal/clock"
	appLog "classclock/internal/log"
	"classclock/internal/metrics"
)

// Ticker periodically refreshes a PeriodClock.
type Ticker struct {
	clock    *clock.PeriodClock
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time

	mu     sync.RWMutex
	last   clock.Snapshot
	ticked bool

	subsMu sync.Mutex
	subs   map[chan clock.Snapshot]struct{}
}

// New creates a Ticker. m may be nil.
func New(c *clock.PeriodClock, interval time.Duration, m *metrics.Metrics) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		clock:    c,
		interval: interval,
		metrics:  m,
		now:      time.Now,
		subs:     make(map[chan clock.Snapshot]struct{}),
	}
}

// WithNow replaces the time source.
func (t *Ticker) WithNow(now func() time.Time) *Ticker {
	t.now = now
	return t
}

// Run ticks immediately and then every interval until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	appLog.Info("clock ticker started", "interval", t.interval.String())
	t.Tick()
	for {
		select {
		case <-tk.C:
			t.Tick()
		case <-ctx.Done():
			appLog.Info("clock ticker stopped")
			return ctx.Err()
		}
	}
}

// Tick performs one refresh cycle and returns the new snapshot.
func (t *Ticker) Tick() clock.Snapshot {
	snap := t.clock.Snapshot(t.now())

	t.mu.Lock()
	prev, hadPrev := t.last, t.ticked
	t.last, t.ticked = snap, true
	t.mu.Unlock()

	if !hadPrev || prev.Index != snap.Index || prev.Name != snap.Name {
		logTransition(prev, snap, hadPrev)
	}

	t.metrics.IncTicks()
	remaining := 0
	if snap.Remaining != nil {
		remaining = *snap.Remaining
	}
	t.metrics.SetPeriod(snap.Active, remaining)

	t.publish(snap)
	return snap
}

func logTransition(prev, cur clock.Snapshot, hadPrev bool) {
	switch {
	case cur.Active:
		appLog.Info("period started", "name", cur.Name, "start", cur.Start, "end", cur.End)
	case hadPrev && prev.Active:
		appLog.Info("period ended", "name", prev.Name)
	}
}

// Latest returns the most recent snapshot. Before the first tick it
// computes one on the spot.
func (t *Ticker) Latest() clock.Snapshot {
	t.mu.RLock()
	snap, ok := t.last, t.ticked
	t.mu.RUnlock()
	if ok {
		return snap
	}
	return t.clock.Snapshot(t.now())
}

// Subscribe returns a channel receiving each new snapshot and a cancel
// function. Slow subscribers miss snapshots rather than stall the clock.
func (t *Ticker) Subscribe() (<-chan clock.Snapshot, func()) {
	ch := make(chan clock.Snapshot, 1)
	t.subsMu.Lock()
	t.subs[ch] = struct{}{}
	t.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subsMu.Lock()
			delete(t.subs, ch)
			t.subsMu.Unlock()
			close(ch)
		})
	}
}

func (t *Ticker) publish(snap clock.Snapshot) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	for ch := range t.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
