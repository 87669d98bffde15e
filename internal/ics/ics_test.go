package ics

import (
	"strings"
	"testing"
	"time"
)

func calendar(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//classclock//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

var schoolWeek = calendar(
	"BEGIN:VEVENT",
	"UID:math@school",
	"DTSTAMP:20250401T000000Z",
	"DTSTART:20250407T084500Z",
	"DTEND:20250407T093000Z",
	"RRULE:FREQ=WEEKLY;BYDAY=MO,TU",
	"EXDATE:20250414T084500Z",
	"SUMMARY:Math",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:reading@school",
	"DTSTAMP:20250401T000000Z",
	"DTSTART:20250407T080000Z",
	"DTEND:20250407T083000Z",
	"SUMMARY:Reading",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:math@school",
	"DTSTAMP:20250401T000000Z",
	"RECURRENCE-ID:20250408T084500Z",
	"DTSTART:20250408T100000Z",
	"DTEND:20250408T104500Z",
	"SUMMARY:Math (moved)",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:sports@school",
	"DTSTAMP:20250401T000000Z",
	"DTSTART;VALUE=DATE:20250407",
	"DTEND;VALUE=DATE:20250408",
	"SUMMARY:Sports day",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"DTSTAMP:20250401T000000Z",
	"DTSTART:20250407T120000Z",
	"DTEND:20250407T130000Z",
	"SUMMARY:No UID",
	"END:VEVENT",
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	events, err := Parse("test", schoolWeek)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	uids := map[string]int{}
	for _, ev := range events {
		uids[ev.UID]++
	}
	if uids["math@school"] != 2 || uids["reading@school"] != 1 {
		t.Fatalf("unexpected events: %v", uids)
	}
	if _, ok := uids[""]; ok {
		t.Fatal("event without UID should be skipped")
	}
	for _, ev := range events {
		if ev.UID == "math@school" && !ev.IsOverride() {
			if ev.RawRRule == "" || len(ev.ExDates) != 1 {
				t.Errorf("base math event lost recurrence data: %+v", ev)
			}
		}
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse("empty", nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestDayRecords(t *testing.T) {
	events, err := Parse("test", schoolWeek)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		name string
		day  time.Time
		want []string
	}{
		{name: "monday", day: day(2025, 4, 7), want: []string{"Reading 08:00-08:30", "Math 08:45-09:30"}},
		{name: "tuesday override", day: day(2025, 4, 8), want: []string{"Math (moved) 10:00-10:45"}},
		{name: "wednesday", day: day(2025, 4, 9), want: nil},
		{name: "exdate", day: day(2025, 4, 14), want: nil},
		{name: "next tuesday", day: day(2025, 4, 15), want: []string{"Math 08:45-09:30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := DayRecords(events, tt.day, time.UTC)
			var got []string
			for _, r := range recs {
				got = append(got, r["name"].(string)+" "+r["start"].(string)+"-"+r["end"].(string))
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayRecords_ConvertsToDisplayZone(t *testing.T) {
	events, err := Parse("test", schoolWeek)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	jst := time.FixedZone("JST", 9*60*60)
	recs := DayRecords(events, time.Date(2025, 4, 7, 12, 0, 0, 0, jst), jst)
	if len(recs) != 2 || recs[0]["start"] != "17:00" || recs[1]["start"] != "17:45" {
		t.Fatalf("unexpected records in JST: %v", recs)
	}
}
