package timetable

import "errors"

var (
	// ErrMalformedTime reports a time-of-day string that is not "HH:MM" in
	// range. Periods carrying one never match.
	ErrMalformedTime = errors.New("timetable: malformed time of day")

	// ErrLoadFailed wraps any failure to obtain or decode a timetable source.
	// The store is reset to empty when it is returned.
	ErrLoadFailed = errors.New("timetable: load failed")

	// ErrUnsupportedFormat is returned for a source whose format cannot be
	// determined from its extension or content type.
	ErrUnsupportedFormat = errors.New("timetable: unsupported format")
)
