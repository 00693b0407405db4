package timeutil

import (
	"testing"
	"time"
)

func TestHourWindow(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	at := time.Date(2025, 6, 10, 9, 42, 17, 500, loc)

	w := HourWindow(at, loc)
	wantStart := time.Date(2025, 6, 10, 9, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("end = %v, want %v", w.End, wantStart.Add(time.Hour))
	}
	if !w.Contains(at) {
		t.Fatal("window should contain the instant it was built from")
	}
	if w.Contains(w.End) {
		t.Fatal("window end is exclusive")
	}
}

func TestHourWindowCrossZone(t *testing.T) {
	// An instant expressed in UTC must bucket into the local hour.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2025, 6, 10, 2, 30, 0, 0, time.UTC) // 21:30 previous day local

	w := HourWindow(at, loc)
	if w.Start.Hour() != 21 || w.Start.Day() != 9 {
		t.Fatalf("start = %v, want local 21:00 on the 9th", w.Start)
	}
}

func TestDayWindow(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	at := time.Date(2025, 6, 10, 23, 59, 59, 0, loc)

	w := DayWindow(at, loc)
	if !w.Start.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, loc)) {
		t.Fatalf("start = %v", w.Start)
	}
	if !w.End.Equal(time.Date(2025, 6, 11, 0, 0, 0, 0, loc)) {
		t.Fatalf("end = %v", w.End)
	}
	if w.End.Sub(w.Start) != 24*time.Hour {
		t.Fatalf("plain day should be 24h, got %v", w.End.Sub(w.Start))
	}
}

func TestDayWindowDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2025-03-30: clocks jump 02:00 -> 03:00, a 23-hour local day.
	spring := DayWindow(time.Date(2025, 3, 30, 12, 0, 0, 0, loc), loc)
	if spring.End.Sub(spring.Start) != 23*time.Hour {
		t.Fatalf("spring-forward day = %v, want 23h", spring.End.Sub(spring.Start))
	}

	// 2025-10-26: clocks fall back, a 25-hour local day.
	fall := DayWindow(time.Date(2025, 10, 26, 12, 0, 0, 0, loc), loc)
	if fall.End.Sub(fall.Start) != 25*time.Hour {
		t.Fatalf("fall-back day = %v, want 25h", fall.End.Sub(fall.Start))
	}
}

func TestHourIndex(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	at := time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC) // 09:30 local
	if got := HourIndex(at, loc); got != 9 {
		t.Fatalf("hour index = %d, want 9", got)
	}
	if got := HourIndex(time.Date(2025, 1, 1, 23, 0, 0, 0, loc), loc); got != 23 {
		t.Fatalf("hour index = %d, want 23", got)
	}
}

func TestDayIndexChangesAtLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	before := time.Date(2025, 6, 10, 23, 59, 0, 0, loc)
	after := time.Date(2025, 6, 11, 0, 1, 0, 0, loc)

	if DayIndex(before, loc) == DayIndex(after, loc) {
		t.Fatal("day index should change across local midnight")
	}
	// Same UTC instant, different zones, different local days.
	utc := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	if DayIndex(utc, time.UTC) == DayIndex(utc, loc) {
		t.Fatal("day index should be zone dependent")
	}
}

func TestDayIndexYearBoundary(t *testing.T) {
	// Dec 31 and Jan 1 must produce distinct indexes even though yday resets.
	dec := time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)
	jan := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	if DayIndex(dec, time.UTC) == DayIndex(jan, time.UTC) {
		t.Fatal("indexes should differ across year boundary")
	}
}
