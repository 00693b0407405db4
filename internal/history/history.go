// Package history keeps the rolling per-hour step totals for the current
// calendar day. Nothing here is persisted; the data lives exactly one day.
package history

import (
	"fmt"
	"sync"
)

// HourlyRecord is one completed hour of the current day.
type HourlyRecord struct {
	Hour  int    `json:"hour"`
	Steps int64  `json:"steps"`
	Label string `json:"label"` // "HH:00"
}

// Store holds hour -> steps for a single day. Safe for concurrent use; the
// clock loop and the data loop both touch it.
type Store struct {
	mu    sync.Mutex
	day   int
	hours map[int]int64
}

func New() *Store {
	return &Store{day: -1, hours: make(map[int]int64)}
}

// Observe notes the current day index and reports whether the calendar day
// rolled over. On rollover all retained hours are cleared before any new
// record is stored.
func (s *Store) Observe(dayIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.day == dayIndex {
		return false
	}
	rolled := s.day != -1
	s.day = dayIndex
	s.hours = make(map[int]int64)
	return rolled
}

// Replace swaps in a freshly reconciled hour map for the given day. A stale
// day index (rollover happened in between) is ignored.
func (s *Store) Replace(dayIndex int, byHour map[int]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.day != dayIndex {
		return
	}
	s.hours = make(map[int]int64, len(byHour))
	for h, n := range byHour {
		s.hours[h] = n
	}
}

// Hours returns a copy of the current hour map.
func (s *Store) Hours() map[int]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]int64, len(s.hours))
	for h, n := range s.hours {
		out[h] = n
	}
	return out
}

// Rebuild lists completed hours of today, most recent first, skipping the
// current hour and hours with no recorded steps.
func (s *Store) Rebuild(currentHour int) []HourlyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []HourlyRecord
	for hour := currentHour - 1; hour >= 0; hour-- {
		steps := s.hours[hour]
		if steps <= 0 {
			continue
		}
		history = append(history, HourlyRecord{
			Hour:  hour,
			Steps: steps,
			Label: fmt.Sprintf("%02d:00", hour),
		})
	}
	return history
}
