package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != defaultListen || cfg.Tick != time.Second || cfg.Timetable != "timetable1.json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.RefreshCron != defaultRefresh || again.Tick != time.Second {
		t.Errorf("round trip lost values: %+v", again)
	}
}

func TestLoad_NormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
lang: EN
tick: 500ms
timetables:
  - source: https://school.example/timetables/grade3.yaml?token=x
  - name: empty
  - name: second
    source: ./data/timetable2.json
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lang != "en" {
		t.Errorf("lang = %q", cfg.Lang)
	}
	if cfg.Tick != 500*time.Millisecond {
		t.Errorf("tick = %v", cfg.Tick)
	}
	if len(cfg.Timetables) != 2 {
		t.Fatalf("timetables = %+v", cfg.Timetables)
	}
	if cfg.Timetables[0].Name != "grade3.yaml" {
		t.Errorf("derived name = %q", cfg.Timetables[0].Name)
	}
	if cfg.Timetable != "grade3.yaml" {
		t.Errorf("active = %q", cfg.Timetable)
	}
	if _, ok := cfg.Find("second"); !ok {
		t.Error("Find(second) failed")
	}
	if cfg.Listen != defaultListen || cfg.Timezone != defaultTimezone {
		t.Errorf("missing defaults: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CLASSCLOCK_LISTEN", ":9999")
	t.Setenv("CLASSCLOCK_TICK", "250ms")
	t.Setenv("CLASSCLOCK_SPEECH_COMMAND", "say -v Kyoko")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.Listen != ":9999" || cfg.Tick != 250*time.Millisecond {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.Speech.Enabled || cfg.Speech.Command != "say -v Kyoko" {
		t.Fatalf("speech env not applied: %+v", cfg.Speech)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("CLASSCLOCK_TEST_LOADENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CLASSCLOCK_TEST_LOADENV") })

	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("CLASSCLOCK_TEST_LOADENV"); got != "from-file" {
		t.Fatalf("env = %q", got)
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Nowhere/Invalid"
	loc, err := cfg.Location()
	if err == nil || loc != time.Local {
		t.Fatalf("expected fallback to Local with error, got %v %v", loc, err)
	}
}

func TestExpandPath(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", "/home/teacher")
	got, err := ExpandPath("~/timetables/a.json")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/home/teacher/timetables/a.json" {
		t.Fatalf("ExpandPath = %q", got)
	}
}
