package timetable

// Period is one named interval of the school day. Start and End keep the
// source strings for display; Bounds parses them.
type Period struct {
	Name  string `json:"name" yaml:"name"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Bounds returns the parsed interval. ok is false when either side is
// malformed or when end is not after start (no overnight periods).
func (p Period) Bounds() (start, end TimeOfDay, ok bool) {
	s, err := ParseTimeOfDay(p.Start)
	if err != nil {
		return 0, 0, false
	}
	e, err := ParseTimeOfDay(p.End)
	if err != nil {
		return 0, 0, false
	}
	if e <= s {
		return 0, 0, false
	}
	return s, e, true
}

// Contains is the half-open test start <= t < end. Malformed periods
// contain nothing.
func (p Period) Contains(t TimeOfDay) bool {
	s, e, ok := p.Bounds()
	if !ok {
		return false
	}
	return s <= t && t < e
}
