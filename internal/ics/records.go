package ics

import (
	"time"

	"classclock/internal/timetable"
)

// DayRecords turns the timed events of day (in loc) into timetable records,
// ordered by start time. All-day events and events that do not start and
// end on day are left out.
func DayRecords(events []Event, day time.Time, loc *time.Location) []timetable.Record {
	if loc == nil {
		loc = time.Local
	}
	day = day.In(loc)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	records := make([]timetable.Record, 0)
	for _, occ := range Expand(events, from, to, loc) {
		if occ.AllDay || occ.Summary == "" {
			continue
		}
		if occ.Start.Before(from) || !occ.End.Before(to) || !occ.End.After(occ.Start) {
			continue
		}
		records = append(records, timetable.Record{
			"name":  occ.Summary,
			"start": timetable.FromTime(occ.Start).String(),
			"end":   timetable.FromTime(occ.End).String(),
		})
	}
	return records
}
