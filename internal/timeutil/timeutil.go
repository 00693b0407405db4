// Package timeutil maps instants onto local calendar hours and days.
package timeutil

import "time"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// HourWindow returns the local calendar hour containing t.
func HourWindow(t time.Time, loc *time.Location) Window {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, loc)
	return Window{Start: start, End: start.Add(time.Hour)}
}

// DayWindow returns the local calendar day containing t. The end is the next
// local midnight, so the window is 23 or 25 hours long across a DST change.
func DayWindow(t time.Time, loc *time.Location) Window {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	end := time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: end}
}

// HourIndex returns the local hour of day for t, 0..23.
func HourIndex(t time.Time, loc *time.Location) int {
	return t.In(loc).Hour()
}

// DayIndex returns an ordinal day number for t, used only to detect day
// rollover. Never persisted.
func DayIndex(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	return lt.Year()*1000 + lt.YearDay()
}
