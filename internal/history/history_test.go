package history

import "testing"

func TestRebuildOrderingAndExclusions(t *testing.T) {
	s := New()
	s.Observe(2025160)
	s.Replace(2025160, map[int]int64{
		7:  120,
		9:  0, // zero hours never appear
		10: 450,
		13: 80, // current hour, must be excluded
		15: 99, // future relative to currentHour, excluded by range
	})

	got := s.Rebuild(13)

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0].Hour != 10 || got[1].Hour != 7 {
		t.Fatalf("wrong order: %+v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Hour >= got[i-1].Hour {
			t.Fatalf("not strictly descending: %+v", got)
		}
	}
	if got[0].Label != "10:00" || got[1].Label != "07:00" {
		t.Fatalf("labels = %q, %q", got[0].Label, got[1].Label)
	}
	if got[0].Steps != 450 || got[1].Steps != 120 {
		t.Fatalf("steps = %+v", got)
	}
}

func TestRebuildMidnight(t *testing.T) {
	s := New()
	s.Observe(1)
	s.Replace(1, map[int]int64{0: 10})

	// At hour 0 there are no completed hours yet.
	if got := s.Rebuild(0); len(got) != 0 {
		t.Fatalf("expected empty history at midnight, got %+v", got)
	}
}

func TestObserveFirstDayIsNotRollover(t *testing.T) {
	s := New()
	if s.Observe(2025160) {
		t.Fatal("first observation should not count as rollover")
	}
	if s.Observe(2025160) {
		t.Fatal("same day should not be a rollover")
	}
}

func TestDayRolloverClearsHours(t *testing.T) {
	s := New()
	s.Observe(2025160)
	s.Replace(2025160, map[int]int64{8: 500, 9: 300})

	if !s.Observe(2025161) {
		t.Fatal("day change should report rollover")
	}
	if len(s.Hours()) != 0 {
		t.Fatalf("hours should be empty after rollover, got %v", s.Hours())
	}
	if got := s.Rebuild(23); len(got) != 0 {
		t.Fatalf("history should be empty after rollover, got %+v", got)
	}
}

func TestReplaceStaleDayIgnored(t *testing.T) {
	s := New()
	s.Observe(2025161)

	// A refresh that started before the rollover must not resurrect old data.
	s.Replace(2025160, map[int]int64{8: 500})
	if len(s.Hours()) != 0 {
		t.Fatalf("stale replace should be ignored, got %v", s.Hours())
	}
}

func TestHoursReturnsCopy(t *testing.T) {
	s := New()
	s.Observe(1)
	s.Replace(1, map[int]int64{8: 10})

	h := s.Hours()
	h[8] = 999
	if s.Hours()[8] != 10 {
		t.Fatal("mutating the returned map must not affect the store")
	}
}
