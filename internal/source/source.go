// Package source obtains raw timetable records from local files and remote
// URLs in JSON, YAML or ICS form.
package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"classclock/internal/config"
	"classclock/internal/timetable"
)

// Ref points at one timetable.
type Ref struct {
	// Name is the label announced after loading.
	Name string
	// Location is a local path or an http(s) URL.
	Location string
}

// RefFrom converts a config entry.
func RefFrom(t config.TimetableConfig) Ref {
	return Ref{Name: t.Name, Location: t.Source}
}

// IsRemote reports whether the ref is fetched over HTTP.
func (r Ref) IsRemote() bool {
	l := strings.ToLower(r.Location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// LocalPath returns the expanded file path of a local ref.
func (r Ref) LocalPath() (string, error) {
	return config.ExpandPath(r.Location)
}

func (r Ref) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Location
}

// Reader resolves refs into records.
type Reader struct {
	fetcher *Fetcher
	loc     *time.Location
	now     func() time.Time
}

// NewReader returns a Reader that fetches remote refs with f and expands
// calendars in loc.
func NewReader(f *Fetcher, loc *time.Location) *Reader {
	if loc == nil {
		loc = time.Local
	}
	if f == nil {
		f = NewFetcher("")
	}
	return &Reader{fetcher: f, loc: loc, now: time.Now}
}

// WithNow overrides the clock used to pick the calendar day.
func (r *Reader) WithNow(now func() time.Time) *Reader {
	r.now = now
	return r
}

// Records obtains and decodes ref. Every failure wraps
// timetable.ErrLoadFailed.
func (r *Reader) Records(ctx context.Context, ref Ref) ([]timetable.Record, error) {
	body, contentType, err := r.read(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", timetable.ErrLoadFailed, ref, err)
	}

	format := DetectFormat(ref.Location, contentType)
	records, err := Decode(body, format, r.now().In(r.loc), r.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", timetable.ErrLoadFailed, ref, err)
	}
	return records, nil
}

func (r *Reader) read(ctx context.Context, ref Ref) ([]byte, string, error) {
	if ref.Location == "" {
		return nil, "", fmt.Errorf("empty location")
	}
	if ref.IsRemote() {
		res, err := r.fetcher.Fetch(ctx, ref.Location)
		if err != nil {
			return nil, "", err
		}
		return res.Body, res.ContentType, nil
	}

	p, err := ref.LocalPath()
	if err != nil {
		return nil, "", err
	}
	body, err := os.ReadFile(p)
	return body, "", err
}
