// Package clock maps wall-clock readings onto the loaded timetable: which
// period is running, how many minutes are left, what the face should show,
// and what to say about it.
package clock

import (
	"sync"
	"time"

	"classclock/internal/timetable"
)

// State is the logical state of a PeriodClock.
type State int

const (
	NoActivePeriod State = iota
	InPeriod
)

func (s State) String() string {
	if s == InPeriod {
		return "in_period"
	}
	return "no_active_period"
}

// Current is the result of a refresh: either no period, or one period copied
// from the store snapshot that was scanned.
type Current struct {
	Period timetable.Period
	// Index is the position of Period in the store, -1 when inactive.
	Index int
}

// None is the inactive Current.
var None = Current{Index: -1}

func (c Current) Active() bool { return c.Index >= 0 }

func (c Current) State() State {
	if c.Active() {
		return InPeriod
	}
	return NoActivePeriod
}

// PeriodClock tracks the current period of a Store. Refresh is level
// triggered: every call rescans from scratch, so repeated calls with the same
// time give the same answer.
type PeriodClock struct {
	store *timetable.Store
	lang  Lang

	mu      sync.RWMutex
	current Current
}

// Option configures a PeriodClock.
type Option func(*PeriodClock)

// WithLang selects the announcement language. Unknown values keep Japanese.
func WithLang(l Lang) Option {
	return func(c *PeriodClock) {
		if _, ok := templates[l]; ok {
			c.lang = l
		}
	}
}

// New returns a PeriodClock over store, initially in NoActivePeriod.
func New(store *timetable.Store, opts ...Option) *PeriodClock {
	c := &PeriodClock{
		store:   store,
		lang:    LangJapanese,
		current: None,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *PeriodClock) Store() *timetable.Store { return c.store }
func (c *PeriodClock) Lang() Lang { return c.lang }

// Refresh scans the store in order and records the first period with
// start <= now < end at minute resolution.
func (c *PeriodClock) Refresh(now time.Time) Current {
	cur := None
	if p, idx := c.store.Find(timetable.FromTime(now)); idx >= 0 {
		cur = Current{Period: p, Index: idx}
	}

	c.mu.Lock()
	c.current = cur
	c.mu.Unlock()
	return cur
}

// Current returns the result of the last Refresh.
func (c *PeriodClock) Current() Current {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// RemainingMinutes reports whole minutes until the current period ends on
// now's date. ok is false when no period is active. The value is never
// negative; 0 is a valid reading.
func (c *PeriodClock) RemainingMinutes(now time.Time) (int, bool) {
	return Remaining(c.Current(), now)
}

// Remaining is RemainingMinutes for an explicit Current.
func Remaining(cur Current, now time.Time) (int, bool) {
	if !cur.Active() {
		return 0, false
	}
	_, end, ok := cur.Period.Bounds()
	if !ok {
		return 0, false
	}
	d := end.On(now).Sub(now)
	if d <= 0 {
		return 0, true
	}
	return int(d / time.Minute), true
}

// AnnouncementText refreshes the clock at now and builds the sentence for
// kind. It never fails and never returns an empty string.
func (c *PeriodClock) AnnouncementText(kind Kind, now time.Time) string {
	return Announcement(c.lang, kind, c.Refresh(now), now)
}
