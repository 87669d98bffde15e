package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// TimetableConfig names one selectable timetable source.
type TimetableConfig struct {
	// Name is the label spoken after a successful load, e.g. "timetable1.json".
	// Defaults to the base name of Source.
	Name string `yaml:"name" json:"name"`
	// Source is a local path or an http(s) URL. The format follows the
	// extension: .json, .yaml/.yml or .ics.
	Source string `yaml:"source" json:"source"`
}

// SpeechConfig controls the announcement sink.
type SpeechConfig struct {
	// Enabled turns on the external TTS command. Announcements are always
	// logged.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Command is the TTS program and its leading arguments; the sentence is
	// appended as the last argument.
	Command string `yaml:"command" json:"command"`
}

// LogConfig controls internal/log.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
// Password may be a bcrypt hash ("$2a$...").
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the clock page and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone the clock runs in (e.g. "Asia/Tokyo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Lang selects announcement and readout wording: "ja" or "en".
	Lang string `yaml:"lang" json:"lang"`

	// Timetable is the name of the entry in Timetables loaded at startup.
	Timetable string `yaml:"timetable" json:"timetable"`

	// Timetables lists the selectable timetable sources.
	Timetables []TimetableConfig `yaml:"timetables" json:"timetables"`

	// RefreshCron reloads the active timetable on a cron schedule
	// (e.g. "*/15 * * * *"). "off" disables scheduled reloads.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Tick is the clock refresh interval.
	Tick time.Duration `yaml:"tick" json:"tick"`

	// Watch reloads local timetable files when they change.
	Watch bool `yaml:"watch" json:"watch"`

	// CacheDir holds cached bodies of remote timetables.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Speech SpeechConfig `yaml:"speech" json:"speech"`
	Log    LogConfig    `yaml:"log" json:"log"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "Asia/Tokyo"
	defaultRefresh  = "*/15 * * * *"
	defaultTick     = time.Second
	defaultCacheDir = "~/.cache/classclock"
	defaultSource   = "data/timetable1.json"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		Lang:        "ja",
		Timetable:   "timetable1.json",
		Timetables:  []TimetableConfig{{Name: "timetable1.json", Source: defaultSource}},
		RefreshCron: defaultRefresh,
		Tick:        defaultTick,
		Watch:       true,
		CacheDir:    defaultCacheDir,
		Speech: SpeechConfig{
			Enabled: false,
			Command: "espeak-ng -v ja",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch strings.ToLower(c.Lang) {
	case "ja", "en":
		c.Lang = strings.ToLower(c.Lang)
	default:
		c.Lang = "ja"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.Tick <= 0 {
		c.Tick = defaultTick
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Drop entries without a source and name the rest.
	kept := make([]TimetableConfig, 0, len(c.Timetables))
	for _, t := range c.Timetables {
		t.Source = strings.TrimSpace(t.Source)
		if t.Source == "" {
			continue
		}
		if t.Name == "" {
			t.Name = sourceBase(t.Source)
		}
		kept = append(kept, t)
	}
	c.Timetables = kept
	if c.Timetable == "" && len(c.Timetables) > 0 {
		c.Timetable = c.Timetables[0].Name
	}
}

// sourceBase returns the last path element of a path or URL, without any
// query string.
func sourceBase(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	src = strings.TrimRight(src, "/")
	if i := strings.LastIndex(src, "/"); i >= 0 {
		return src[i+1:]
	}
	return src
}

// Find returns the timetable entry called name.
func (c *Config) Find(name string) (TimetableConfig, bool) {
	for _, t := range c.Timetables {
		if t.Name == name {
			return t, true
		}
	}
	return TimetableConfig{}, false
}

// Active returns the entry selected by Timetable.
func (c *Config) Active() (TimetableConfig, bool) {
	return c.Find(c.Timetable)
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// ExpandPath resolves a leading "~" against the user's home directory.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return homedir.Expand(p)
}

// LoadEnv reads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment. Missing files are not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides file values with CLASSCLOCK_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CLASSCLOCK_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CLASSCLOCK_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("CLASSCLOCK_LANG"); v != "" {
		c.Lang = v
	}
	if v := os.Getenv("CLASSCLOCK_TIMETABLE"); v != "" {
		c.Timetable = v
	}
	if v := os.Getenv("CLASSCLOCK_REFRESH"); v != "" {
		c.RefreshCron = v
	}
	if v := os.Getenv("CLASSCLOCK_TICK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Tick = d
		}
	}
	if v := os.Getenv("CLASSCLOCK_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("CLASSCLOCK_SPEECH_COMMAND"); v != "" {
		c.Speech.Command = v
		c.Speech.Enabled = true
	}
	if v := os.Getenv("CLASSCLOCK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CLASSCLOCK_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Load loads configuration from the given YAML path, then applies
// environment overrides.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				cfg.ApplyEnv()
				cfg.Normalize()
				return cfg, err
			}
			cfg.ApplyEnv()
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".classclock-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
