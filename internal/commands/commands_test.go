package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"classclock/internal/timetable"
)

const testTimetable = `[
  {"名称": "1時間目", "開始時刻": "08:45", "終了時刻": "09:30"},
  {"名称": "2時間目", "開始時刻": "09:40", "終了時刻": "10:25"},
  {"名称": "壊れた行", "開始時刻": "25:00", "終了時刻": "26:00"}
]`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	tt := filepath.Join(dir, "timetable1.json")
	if err := os.WriteFile(tt, []byte(testTimetable), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := "timezone: UTC\n" +
		"lang: ja\n" +
		"timetable: timetable1.json\n" +
		"timetables:\n" +
		"  - source: " + tt + "\n" +
		"cache_dir: " + filepath.Join(dir, "cache") + "\n" +
		"speech:\n  enabled: false\n"
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	*ro = rootOptions{}

	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatus(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "status", "--config", cfg, "--at", "09:10")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	for _, want := range []string{"午前9:10", "timetable1.json", "1時間目", "08:45", "09:30", "20"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestStatus_BetweenPeriods(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "status", "--config", cfg, "--at", "09:35", "--json")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	var snap struct {
		Active    bool   `json:"active"`
		Name      string `json:"name"`
		Remaining *int   `json:"remaining_minutes"`
	}
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if snap.Active || snap.Name != "---" || snap.Remaining != nil {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestStatus_BadAt(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "status", "--config", cfg, "--at", "9:10"); err == nil {
		t.Fatal("expected error for malformed --at")
	}
}

func TestTimetable(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "timetable", "--config", cfg, "--json")
	if err != nil {
		t.Fatalf("timetable: %v\n%s", err, out)
	}
	var periods []timetable.Period
	if err := json.Unmarshal([]byte(out), &periods); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if len(periods) != 3 || periods[1].Name != "2時間目" {
		t.Fatalf("periods = %+v", periods)
	}

	out, err = run(t, "tt", "--config", cfg, "--at", "10:00")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "> ") || !strings.Contains(out, "2時間目") {
		t.Fatalf("current period not marked:\n%s", out)
	}
}

func TestSay(t *testing.T) {
	cfg := writeConfig(t)
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"name", "--at", "09:10"}, "1時間目"},
		{[]string{"remaining", "--at", "09:10"}, "1時間目は、あと20分で終わります"},
		{[]string{"end", "--at", "12:00"}, "現在、終了時刻の情報はありません"},
	}
	for _, tc := range cases {
		args := append([]string{"say", "--config", cfg}, tc.args...)
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("say %v: %v", tc.args, err)
		}
		if strings.TrimSpace(out) != tc.want {
			t.Errorf("say %v = %q, want %q", tc.args, strings.TrimSpace(out), tc.want)
		}
	}
}

func TestSay_UnknownKind(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "say", "--config", cfg, "weather"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSnapshot_SVG(t *testing.T) {
	cfg := writeConfig(t)
	out := filepath.Join(t.TempDir(), "clock.svg")
	if _, err := run(t, "snapshot", "--config", cfg, "--out", out, "--at", "09:10", "--minutes"); err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body, []byte(`class="remaining"`)) || !bytes.Contains(body, []byte("minute-tick")) {
		t.Fatalf("unexpected svg:\n%s", body)
	}
}

func TestUnknownTimetable(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "status", "--config", cfg, "--timetable", "missing.json"); err == nil {
		t.Fatal("expected error for an unconfigured timetable")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "dev") {
		t.Fatalf("version output = %q", out)
	}
}
