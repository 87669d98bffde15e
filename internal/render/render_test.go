package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"classclock/internal/clock"
	"classclock/internal/timetable"
)

func snapshotAt(t *testing.T, hhmm string, records ...timetable.Record) clock.Snapshot {
	t.Helper()
	tod, err := timetable.ParseTimeOfDay(hhmm)
	if err != nil {
		t.Fatal(err)
	}
	s := timetable.NewStore()
	s.Load(records)
	now := tod.On(time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC))
	return clock.New(s).Snapshot(now)
}

func TestSlicePath(t *testing.T) {
	cases := []struct {
		name         string
		start, sweep float64
		want         string
	}{
		{"empty", 0, 0, ""},
		{"negative", 90, -5, ""},
		{"quarter", 0, 90, "M 100 100 L 100 12 A 88 88 0 0 1 188 100 Z"},
		{"large arc", 0, 270, "M 100 100 L 100 12 A 88 88 0 1 1 12 100 Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlicePath(tc.start, tc.sweep, 88); got != tc.want {
				t.Fatalf("SlicePath(%v, %v) = %q, want %q", tc.start, tc.sweep, got, tc.want)
			}
		})
	}
}

func TestSlicePath_FullCircle(t *testing.T) {
	got := SlicePath(30, 360, 88)
	if strings.Count(got, "A 88 88 0 1 1") != 2 || !strings.HasSuffix(got, "Z") {
		t.Fatalf("full circle path = %q", got)
	}
}

func TestSVG_InPeriod(t *testing.T) {
	snap := snapshotAt(t, "09:10", timetable.Record{"name": "国語", "start": "08:30", "end": "09:15"})
	out := string(SVG(snap, Options{}))

	for _, want := range []string{`class="hour-hand"`, `class="minute-hand"`, `class="second-hand"`, `class="remaining"`, `width="400"`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %s", want)
		}
	}
	if n := strings.Count(out, `class="hour-number"`); n != 12 {
		t.Errorf("hour numbers = %d, want 12", n)
	}
	if strings.Contains(out, "minute-tick") {
		t.Error("minute marks drawn without the option")
	}
}

func TestSVG_OutsidePeriod(t *testing.T) {
	snap := snapshotAt(t, "12:00", timetable.Record{"name": "国語", "start": "08:30", "end": "09:15"})
	out := string(SVG(snap, Options{MinuteMarks: true, Size: 300}))

	if strings.Contains(out, `class="remaining"`) {
		t.Error("slice drawn outside a period")
	}
	if n := strings.Count(out, `class="minute-tick"`); n != 60 {
		t.Errorf("minute ticks = %d, want 60", n)
	}
	if !strings.Contains(out, `width="300"`) {
		t.Error("size option ignored")
	}
}

func TestPage(t *testing.T) {
	snap := snapshotAt(t, "09:10", timetable.Record{"name": "<b>国語</b>", "start": "08:30", "end": "09:15"})

	var buf bytes.Buffer
	if err := Page(&buf, snap, PageOptions{Refresh: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`data-ready="true"`,
		`http-equiv="refresh" content="1"`,
		`&lt;b&gt;国語&lt;/b&gt;`,
		`<dd id="current-start">08:30</dd>`,
		`<dd id="current-remaining">5 分</dd>`,
		`午前9:10`,
		`<svg`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %s", want)
		}
	}
}

func TestPage_NoPeriodEnglish(t *testing.T) {
	snap := snapshotAt(t, "12:00")

	var buf bytes.Buffer
	if err := Page(&buf, snap, PageOptions{Lang: clock.LangEnglish}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `<dd id="current-subject">---</dd>`) {
		t.Error("placeholder missing")
	}
	if !strings.Contains(out, `<dd id="current-remaining">---</dd>`) {
		t.Error("remaining placeholder missing")
	}
	if strings.Contains(out, "http-equiv") {
		t.Error("refresh emitted with Refresh=0")
	}
	if !strings.Contains(out, `lang="en"`) {
		t.Error("lang attribute")
	}
}

func TestPage_Controls(t *testing.T) {
	snap := snapshotAt(t, "09:10", timetable.Record{"name": "国語", "start": "08:30", "end": "09:15"})

	var buf bytes.Buffer
	err := Page(&buf, snap, PageOptions{
		Controls:   true,
		Timetables: []string{"a.json", "b.json"},
		Active:     "b.json",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`action="/clock/announce/time"`,
		`action="/clock/announce/name"`,
		`action="/clock/announce/start"`,
		`action="/clock/announce/end"`,
		`action="/clock/announce/remaining"`,
		`>残り時間</button>`,
		`<a id="minute-toggle" href="/clock?minutes=1">分表示</a>`,
		`action="/clock/timetable"`,
		`<option value="a.json">a.json</option>`,
		`<option value="b.json" selected>b.json</option>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if i, j := strings.Index(out, "</main>"), strings.Index(out, `id="controls"`); j < i {
		t.Error("controls must come after the #clock element")
	}
}

func TestPage_ControlsMinuteToggle(t *testing.T) {
	snap := snapshotAt(t, "12:00")

	var buf bytes.Buffer
	err := Page(&buf, snap, PageOptions{
		Options:  Options{MinuteMarks: true},
		Lang:     clock.LangEnglish,
		Controls: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `<a id="minute-toggle" href="/clock">Hide minutes</a>`) {
		t.Error("toggle should turn minute marks off")
	}
	if !strings.Contains(out, `name="minutes" value="1"`) {
		t.Error("forms should carry the minute-mark setting")
	}
	if strings.Contains(out, `id="timetable-switch"`) {
		t.Error("timetable switch rendered without timetables")
	}
}

func TestPage_NoControlsByDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := Page(&buf, snapshotAt(t, "12:00"), PageOptions{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `id="controls"`) {
		t.Error("controls rendered when disabled")
	}
}
