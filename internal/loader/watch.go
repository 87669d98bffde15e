package loader

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "classclock/internal/log"
)

// watchDelay coalesces the burst of events an editor save produces.
const watchDelay = 200 * time.Millisecond

// Watch reloads the active timetable whenever its local file changes, until
// ctx is done. Directories are watched rather than files so that
// write-to-temp-then-rename saves are seen.
func (l *Loader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	l.mu.Lock()
	l.watcher = w
	l.watchLocked(l.active)
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.watcher = nil
		l.mu.Unlock()
	}()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	reload := func() {
		if _, err := l.Reload(ctx); !applied(err) {
			appLog.Debug("watched reload did not apply", "reason", err.Error())
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			appLog.Error("timetable watcher error", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !l.isActiveFile(ev.Name) {
				continue
			}
			appLog.Debug("timetable file changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.AfterFunc(watchDelay, reload)
			} else {
				timer.Reset(watchDelay)
			}
		}
	}
}

func (l *Loader) isActiveFile(name string) bool {
	ref := l.Active()
	if ref.Location == "" || ref.IsRemote() {
		return false
	}
	p, err := ref.LocalPath()
	if err != nil {
		return false
	}
	a, err1 := filepath.Abs(p)
	b, err2 := filepath.Abs(name)
	if err1 != nil || err2 != nil {
		return filepath.Clean(p) == filepath.Clean(name)
	}
	return a == b
}
