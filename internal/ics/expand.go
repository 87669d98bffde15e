package ics

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "classclock/internal/log"
)

// maxOccurrencesPerEvent caps expansion of a single RRULE.
const maxOccurrencesPerEvent = 5000

// Occurrence is one concrete instance of an event in the display zone.
type Occurrence struct {
	UID      string
	Summary  string
	Location string
	AllDay   bool
	Start    time.Time
	End      time.Time
}

// Expand returns every occurrence that intersects [from, to), converted to
// loc and ordered by start. It applies RRULE, EXDATE and RECURRENCE-ID
// overrides.
func Expand(events []Event, from, to time.Time, loc *time.Location) []Occurrence {
	if loc == nil {
		loc = time.Local
	}

	// Keep the first-seen order of UIDs so equal start times stay stable.
	var uids []string
	base := make(map[string][]Event)
	overrides := make(map[string][]Event)
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := base[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	out := make([]Occurrence, 0)
	for _, uid := range uids {
		for _, ev := range base[uid] {
			out = append(out, expandEvent(ev, overrides[uid], from, to, loc)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func expandEvent(ev Event, overrides []Event, from, to time.Time, loc *time.Location) []Occurrence {
	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, from, to) {
			return nil
		}
		return []Occurrence{instance(ev, overrides, ev.Start, ev.End, loc)}
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("ics rrule skipped", "uid", ev.UID, "rrule", ev.RawRRule, "reason", err.Error())
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	// Widen the window by one duration so an instance that started before
	// from but is still running is included.
	times := set.Between(from.Add(-dur).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(times) > maxOccurrencesPerEvent {
		appLog.Warn("ics expansion truncated", "uid", ev.UID, "cap", maxOccurrencesPerEvent)
		times = times[:maxOccurrencesPerEvent]
	}

	out := make([]Occurrence, 0, len(times))
	for _, start := range times {
		end := start.Add(dur)
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.AddDate(0, 0, 1)
		}
		if !overlaps(start, end, from, to) {
			continue
		}
		out = append(out, instance(ev, overrides, start, end, loc))
	}
	return out
}

// instance applies a matching override and converts to loc.
func instance(ev Event, overrides []Event, start, end time.Time, loc *time.Location) Occurrence {
	for _, ov := range overrides {
		if ov.Recurrence.Equal(start) {
			ev, start, end = ov, ov.Start, ov.End
			break
		}
	}
	return Occurrence{
		UID:      ev.UID,
		Summary:  ev.Summary,
		Location: ev.Location,
		AllDay:   ev.AllDay,
		Start:    start.In(loc),
		End:      end.In(loc),
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
