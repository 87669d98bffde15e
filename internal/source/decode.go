package source

import (
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"classclock/internal/ics"
	"classclock/internal/timetable"
)

// Format identifies how a timetable body is encoded.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// DetectFormat picks a format from the location's extension, then from the
// content type. It returns "" when neither is conclusive.
func DetectFormat(location, contentType string) Format {
	loc := location
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	switch strings.ToLower(path.Ext(loc)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".ics", ".ical", ".ifb":
		return FormatICS
	}

	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "application/json", "text/json":
		return FormatJSON
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML
	case "text/calendar":
		return FormatICS
	}
	return ""
}

// Decode turns a body into raw records. ICS bodies yield the timed events
// of day in loc.
func Decode(body []byte, format Format, day time.Time, loc *time.Location) ([]timetable.Record, error) {
	switch format {
	case FormatJSON:
		var records []timetable.Record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return records, nil

	case FormatYAML:
		var records []timetable.Record
		if err := yaml.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return records, nil

	case FormatICS:
		events, err := ics.Parse("timetable", body)
		if err != nil {
			return nil, fmt.Errorf("decode ics: %w", err)
		}
		return ics.DayRecords(events, day, loc), nil

	default:
		return nil, timetable.ErrUnsupportedFormat
	}
}
