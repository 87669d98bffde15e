package ticker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"classclock/internal/clock"
	"classclock/internal/metrics"
	"classclock/internal/timetable"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

func newTicker(now *fakeNow) *Ticker {
	s := timetable.NewStore()
	s.Load([]timetable.Record{{"name": "国語", "start": "08:30", "end": "09:15"}})
	return New(clock.New(s), 10*time.Millisecond, metrics.New()).WithNow(now.Now)
}

func TestTick_TracksPeriod(t *testing.T) {
	now := &fakeNow{t: time.Date(2025, 4, 7, 8, 29, 0, 0, time.UTC)}
	tk := newTicker(now)

	if snap := tk.Tick(); snap.Active {
		t.Fatalf("08:29 should be outside, got %+v", snap)
	}
	now.Set(time.Date(2025, 4, 7, 9, 10, 0, 0, time.UTC))
	snap := tk.Tick()
	if !snap.Active || snap.Name != "国語" || snap.RemainingText() != "5" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if got := tk.Latest(); got.Name != "国語" {
		t.Fatalf("Latest = %+v", got)
	}
}

func TestLatest_BeforeFirstTick(t *testing.T) {
	now := &fakeNow{t: time.Date(2025, 4, 7, 8, 45, 0, 0, time.UTC)}
	tk := newTicker(now)
	if snap := tk.Latest(); !snap.Active {
		t.Fatalf("Latest should compute a snapshot, got %+v", snap)
	}
}

func TestSubscribe(t *testing.T) {
	now := &fakeNow{t: time.Date(2025, 4, 7, 8, 45, 0, 0, time.UTC)}
	tk := newTicker(now)
	ch, cancel := tk.Subscribe()

	tk.Tick()
	select {
	case snap := <-ch:
		if snap.Name != "国語" {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	// A full buffer must not block Tick.
	tk.Tick()
	tk.Tick()

	cancel()
	cancel()
	for range ch {
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	now := &fakeNow{t: time.Date(2025, 4, 7, 8, 45, 0, 0, time.UTC)}
	tk := newTicker(now)
	ch, cancel := tk.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tk.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("ticker did not tick")
		}
	}
	stop()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
