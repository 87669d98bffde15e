package timetable

import (
	"sync/atomic"

	appLog "classclock/internal/log"
)

// Table is one generation of store content. Version grows with every swap.
type Table struct {
	Periods []Period
	Version uint64
}

// Find returns the first period containing t and its index, or -1.
func (t Table) Find(tod TimeOfDay) (Period, int) {
	for i, p := range t.Periods {
		if p.Contains(tod) {
			return p, i
		}
	}
	return Period{}, -1
}

// Store owns the ordered list of periods. Order is source order and decides
// precedence when intervals overlap. Content is swapped as a whole, so
// readers see either the previous list or the new one.
type Store struct {
	table atomic.Pointer[Table]
	seq   atomic.Uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.table.Store(&Table{Periods: []Period{}})
	return s
}

func (s *Store) swap(periods []Period) {
	s.table.Store(&Table{Periods: periods, Version: s.seq.Add(1)})
}

// Load normalizes records and replaces the store content. Records missing a
// name, start, or end are dropped. It returns the number of periods kept.
func (s *Store) Load(records []Record) int {
	out := make([]Period, 0, len(records))
	for i, r := range records {
		p, ok := r.Normalize()
		if !ok {
			appLog.Debug("timetable record dropped", "index", i)
			continue
		}
		out = append(out, p)
	}
	s.swap(out)
	return len(out)
}

// Replace swaps in already-normalized periods.
func (s *Store) Replace(periods []Period) {
	s.swap(append([]Period{}, periods...))
}

// Reset empties the store.
func (s *Store) Reset() {
	s.swap([]Period{})
}

// Table returns the current generation with its own copy of the periods.
func (s *Store) Table() Table {
	cur := s.table.Load()
	return Table{Periods: append([]Period(nil), cur.Periods...), Version: cur.Version}
}

// Periods returns a copy of the current list.
func (s *Store) Periods() []Period {
	return s.Table().Periods
}

// Version identifies the current generation; it changes on every swap.
func (s *Store) Version() uint64 {
	return s.table.Load().Version
}

func (s *Store) Len() int {
	return len(s.table.Load().Periods)
}

// Find returns the first period containing t and its index, or -1.
func (s *Store) Find(t TimeOfDay) (Period, int) {
	return s.table.Load().Find(t)
}
