// Package loader serializes timetable loads: one load in flight at a time,
// a newer request supersedes an older one, and the store is swapped or
// cleared as a whole.
package loader

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"classclock/internal/clock"
	appLog "classclock/internal/log"
	"classclock/internal/metrics"
	"classclock/internal/source"
	"classclock/internal/speech"
	"classclock/internal/timetable"
)

// ErrSuperseded is returned by a load that was overtaken by a newer one.
// The store reflects the newer load.
var ErrSuperseded = errors.New("loader: superseded by a newer load")

// applied reports whether a background reload needs no log line: it
// succeeded, or a newer load (wrapped or not) took over.
func applied(err error) bool {
	return err == nil || errors.Is(err, ErrSuperseded)
}

// Result describes a completed load.
type Result struct {
	Ref     source.Ref
	Periods int
}

// Loader loads timetables into a store.
type Loader struct {
	store   *timetable.Store
	clock   *clock.PeriodClock
	reader  *source.Reader
	sink    speech.Sink
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	active  source.Ref
	watcher *fsnotify.Watcher
}

// New wires a Loader. sink and m may be nil.
func New(c *clock.PeriodClock, reader *source.Reader, sink speech.Sink, m *metrics.Metrics) *Loader {
	if sink == nil {
		sink = speech.Discard
	}
	return &Loader{
		store:   c.Store(),
		clock:   c,
		reader:  reader,
		sink:    sink,
		metrics: m,
		now:     time.Now,
	}
}

// WithNow replaces the time source used to refresh the clock after a load.
func (l *Loader) WithNow(now func() time.Time) *Loader {
	l.now = now
	return l
}

// Active returns the ref of the most recent load request.
func (l *Loader) Active() source.Ref {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Load obtains ref and swaps it into the store, then speaks the outcome.
// On failure the store is cleared and the error wraps
// timetable.ErrLoadFailed.
func (l *Loader) Load(ctx context.Context, ref source.Ref) (Result, error) {
	return l.load(ctx, ref, true)
}

// Reload loads the active ref again without announcing success.
func (l *Loader) Reload(ctx context.Context) (Result, error) {
	ref := l.Active()
	if ref.Location == "" {
		return Result{}, errors.New("loader: no timetable selected")
	}
	return l.load(ctx, ref, false)
}

func (l *Loader) load(parent context.Context, ref source.Ref, announce bool) (Result, error) {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.active = ref
	l.mu.Unlock()
	defer cancel()

	records, err := l.reader.Records(ctx, ref)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return Result{}, ErrSuperseded
	}
	l.cancel = nil

	lang := l.clock.Lang()
	if err != nil {
		l.store.Reset()
		l.clock.Refresh(l.now())
		l.metrics.ObserveLoad(false, 0)
		appLog.Error("timetable load failed; timetable cleared", err, "timetable", ref.String())
		l.sink.Speak(clock.LoadFailedText(lang))
		return Result{}, err
	}

	n := l.store.Load(records)
	l.clock.Refresh(l.now())
	l.metrics.ObserveLoad(true, n)
	appLog.Info("timetable loaded", "timetable", ref.String(), "records", len(records), "periods", n)
	if announce {
		l.sink.Speak(clock.LoadedText(lang, ref.String()))
	}
	l.watchLocked(ref)
	return Result{Ref: ref, Periods: n}, nil
}

// watchLocked adds the directory of a local ref to the file watcher.
func (l *Loader) watchLocked(ref source.Ref) {
	if l.watcher == nil || ref.IsRemote() {
		return
	}
	p, err := ref.LocalPath()
	if err != nil {
		return
	}
	dir := filepath.Dir(p)
	if err := l.watcher.Add(dir); err != nil {
		appLog.Error("timetable watch failed", err, "dir", dir)
	}
}
