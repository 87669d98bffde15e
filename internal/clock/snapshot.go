package clock

import (
	"strconv"
	"time"
)

// Placeholder is shown in place of period fields when no period is active.
const Placeholder = "---"

// Snapshot is everything a display needs for one tick. It is a value; the
// renderers never read the live clock or store.
type Snapshot struct {
	Time    time.Time `json:"time"`
	Digital string    `json:"digital"`
	Face    Face      `json:"face"`

	Active bool   `json:"active"`
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Start  string `json:"start"`
	End    string `json:"end"`

	// Remaining is nil outside a period.
	Remaining *int `json:"remaining_minutes"`
}

func (s Snapshot) State() State {
	if s.Active {
		return InPeriod
	}
	return NoActivePeriod
}

// RemainingText is the remaining minutes as display text, or Placeholder.
func (s Snapshot) RemainingText() string {
	if s.Remaining == nil {
		return Placeholder
	}
	return strconv.Itoa(*s.Remaining)
}

// Snapshot refreshes the clock at now and captures the result.
func (c *PeriodClock) Snapshot(now time.Time) Snapshot {
	return BuildSnapshot(c.lang, c.Refresh(now), now)
}

// BuildSnapshot assembles a Snapshot from an explicit Current.
func BuildSnapshot(l Lang, cur Current, now time.Time) Snapshot {
	snap := Snapshot{
		Time:    now,
		Digital: Digital(l, now),
		Face:    FaceAt(now, cur),
		Active:  cur.Active(),
		Index:   cur.Index,
		Name:    Placeholder,
		Start:   Placeholder,
		End:     Placeholder,
	}
	if !cur.Active() {
		return snap
	}
	snap.Name = cur.Period.Name
	snap.Start = cur.Period.Start
	snap.End = cur.Period.End
	if n, ok := Remaining(cur, now); ok {
		snap.Remaining = &n
	}
	return snap
}
