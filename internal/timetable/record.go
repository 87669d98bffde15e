package timetable

import (
	"fmt"
	"strings"
)

// Record is one raw key/value entry as decoded from a timetable source.
type Record map[string]any

// Field aliases, checked in order. The Japanese keys come first because the
// classroom data files use them.
var (
	nameKeys  = []string{"名称", "name", "label"}
	startKeys = []string{"開始時刻", "start"}
	endKeys   = []string{"終了時刻", "end"}
)

// lookup returns the first non-empty string value under any of keys.
// Numbers and other scalars are formatted; nested values are ignored.
func (r Record) lookup(keys []string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch tv := v.(type) {
		case string:
			s = tv
		case map[string]any, []any:
			continue
		default:
			s = fmt.Sprint(tv)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Normalize resolves the aliases of r into a Period. ok is false when the
// name, start, or end is missing. Time strings are not validated here;
// malformed ones simply never match.
func (r Record) Normalize() (Period, bool) {
	p := Period{
		Name:  r.lookup(nameKeys),
		Start: r.lookup(startKeys),
		End:   r.lookup(endKeys),
	}
	if p.Name == "" || p.Start == "" || p.End == "" {
		return Period{}, false
	}
	return p, true
}
