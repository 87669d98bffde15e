package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"classclock/internal/config"
	appLog "classclock/internal/log"
	"classclock/internal/timetable"
)

const defaultConfigPath = "~/.config/classclock/config.yaml"

type rootOptions struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   string
	Timetable  string
}

func addRootFlags(cmd *cobra.Command, o *rootOptions) {
	cmd.PersistentFlags().StringVarP(&o.ConfigPath, "config", "c", defaultConfigPath,
		"Path to the YAML config file. Created with defaults on first run.")
	cmd.PersistentFlags().StringSliceVar(&o.EnvFiles, "env-file", nil,
		"dotenv files with CLASSCLOCK_* overrides (default .env).")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "",
		"Log level: debug, info, warn or error. Overrides the config file.")
	cmd.PersistentFlags().StringVarP(&o.Timetable, "timetable", "t", "",
		"Name of the configured timetable to use instead of the default.")
}

// loadConfig reads .env files and the config file, then configures logging.
// One-shot commands log at warn unless --log-level says otherwise.
func (o *rootOptions) loadConfig(oneShot bool) (*config.Config, error) {
	if err := config.LoadEnv(o.EnvFiles...); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		if cfg == nil {
			return nil, fmt.Errorf("load config %s: %w", o.ConfigPath, err)
		}
		appLog.Error("failed to save default config", err, "config_path", o.ConfigPath)
	}
	if o.Timetable != "" {
		cfg.Timetable = o.Timetable
	}

	level := cfg.Log.Level
	if oneShot {
		level = "warn"
	}
	if o.LogLevel != "" {
		level = o.LogLevel
	}
	appLog.Configure(appLog.ParseLevel(level), cfg.Log.Format)
	return cfg, nil
}

// atTime resolves an optional --at HH:MM against today in loc.
func atTime(at string, loc *time.Location) (time.Time, error) {
	now := time.Now().In(loc)
	if at == "" {
		return now, nil
	}
	tod, err := timetable.ParseTimeOfDay(at)
	if err != nil {
		return time.Time{}, errors.New("--at must be HH:MM (24-hour)")
	}
	return tod.On(now), nil
}
