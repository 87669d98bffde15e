package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"classclock/internal/timetable"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		location, contentType string
		want                  Format
	}{
		{"data/timetable1.json", "", FormatJSON},
		{"data/t.YML", "", FormatYAML},
		{"https://x.example/cal.ics?key=1", "", FormatICS},
		{"https://x.example/feed", "text/calendar; charset=utf-8", FormatICS},
		{"https://x.example/feed", "application/json", FormatJSON},
		{"https://x.example/feed", "text/plain", ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.location, tt.contentType); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %q, want %q", tt.location, tt.contentType, got, tt.want)
		}
	}
}

func TestDecode_YAML(t *testing.T) {
	body := []byte(`
- 名称: 1時間目
  開始時刻: "08:45"
  終了時刻: "09:30"
- name: Lunch
  start: 12:00
  end: 12:45
`)
	records, err := Decode(body, FormatYAML, time.Now(), time.UTC)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s := timetable.NewStore()
	if n := s.Load(records); n != 2 {
		t.Fatalf("loaded %d periods, want 2", n)
	}
	if p := s.Periods()[1]; p.Start != "12:00" || p.End != "12:45" {
		t.Fatalf("unquoted yaml times decoded as %+v", p)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte("{not json"), FormatJSON, time.Now(), time.UTC); err == nil {
		t.Error("expected json error")
	}
	if _, err := Decode([]byte(`{"name":"x"}`), FormatJSON, time.Now(), time.UTC); err == nil {
		t.Error("expected error for a non-array document")
	}
	if _, err := Decode([]byte("x"), "", time.Now(), time.UTC); !errors.Is(err, timetable.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReader_LocalFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "timetable1.json")
	body := `[{"名称":"1時間目","開始時刻":"08:45","終了時刻":"09:30"},{"開始時刻":"08:30"}]`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewReader(nil, time.UTC)
	records, err := r.Records(context.Background(), Ref{Name: "timetable1.json", Location: p})
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 raw records", len(records))
	}
}

func TestReader_FailuresWrapLoadFailed(t *testing.T) {
	r := NewReader(nil, time.UTC)
	_, err := r.Records(context.Background(), Ref{Location: filepath.Join(t.TempDir(), "missing.json")})
	if !errors.Is(err, timetable.ErrLoadFailed) {
		t.Fatalf("missing file: expected ErrLoadFailed, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = r.Records(context.Background(), Ref{Location: bad})
	if !errors.Is(err, timetable.ErrLoadFailed) {
		t.Fatalf("bad json: expected ErrLoadFailed, got %v", err)
	}
}

func TestReader_RemoteICS(t *testing.T) {
	cal := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//t//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:a@x\r\nDTSTAMP:20250401T000000Z\r\nDTSTART:20250407T010000Z\r\nDTEND:20250407T014500Z\r\nSUMMARY:Science\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(cal))
	}))
	defer srv.Close()

	r := NewReader(NewFetcher(t.TempDir()), time.UTC).
		WithNow(func() time.Time { return time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC) })
	records, err := r.Records(context.Background(), Ref{Location: srv.URL + "/feed"})
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "Science" || records[0]["start"] != "01:00" {
		t.Fatalf("unexpected records: %v", records)
	}
}
