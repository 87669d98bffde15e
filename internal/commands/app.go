package commands

import (
	"context"
	"fmt"
	"time"

	"classclock/internal/clock"
	"classclock/internal/config"
	"classclock/internal/loader"
	appLog "classclock/internal/log"
	"classclock/internal/metrics"
	"classclock/internal/source"
	"classclock/internal/speech"
	"classclock/internal/timetable"
)

// app is the object graph shared by the commands.
type app struct {
	cfg     *config.Config
	loc     *time.Location
	store   *timetable.Store
	clock   *clock.PeriodClock
	metrics *metrics.Metrics
	sink    speech.Sink
	tts     *speech.CommandSink
	loader  *loader.Loader
}

// newApp wires the clock. With speak false nothing is spoken.
func newApp(cfg *config.Config, speak bool) *app {
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", cfg.Timezone)
	}

	a := &app{
		cfg:     cfg,
		loc:     loc,
		store:   timetable.NewStore(),
		metrics: metrics.New(),
		sink:    speech.Discard,
	}
	a.clock = clock.New(a.store, clock.WithLang(clock.ParseLang(cfg.Lang)))

	if speak {
		sinks := []speech.Sink{speech.LogSink{}}
		if cfg.Speech.Enabled {
			tts, err := speech.NewCommandSink(cfg.Speech.Command)
			if err != nil {
				appLog.Error("speech command unavailable; announcements are logged only", err, "command", cfg.Speech.Command)
			} else {
				a.tts = tts
				sinks = append(sinks, tts)
			}
		}
		a.sink = speech.Multi(sinks...)
	}

	cacheDir, err := config.ExpandPath(cfg.CacheDir)
	if err != nil {
		appLog.Error("failed to expand cache dir; caching disabled", err, "cache_dir", cfg.CacheDir)
		cacheDir = ""
	}
	reader := source.NewReader(source.NewFetcher(cacheDir), loc)
	a.loader = loader.New(a.clock, reader, a.sink, a.metrics).WithNow(a.now)
	return a
}

// now is the wall clock in the configured timezone.
func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}

// activeRef returns the configured timetable selected by cfg.Timetable.
func (a *app) activeRef() (source.Ref, error) {
	t, ok := a.cfg.Active()
	if !ok {
		return source.Ref{}, fmt.Errorf("timetable %q is not configured", a.cfg.Timetable)
	}
	return source.RefFrom(t), nil
}

// load loads the active timetable.
func (a *app) load(ctx context.Context) (source.Ref, error) {
	ref, err := a.activeRef()
	if err != nil {
		return ref, err
	}
	_, err = a.loader.Load(ctx, ref)
	return ref, err
}

func (a *app) close() {
	if a.tts != nil {
		a.tts.Close()
	}
}
