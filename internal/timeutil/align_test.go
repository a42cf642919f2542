package timeutil

import (
	"testing"
	"time"
)

func TestAlignDayStart(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name        string
		in          time.Time
		dayStartsAt int
		want        time.Time
	}{
		{
			name:        "midnight boundary",
			in:          time.Date(2025, 3, 10, 15, 30, 0, 0, loc),
			dayStartsAt: 0,
			want:        time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		},
		{
			name:        "after custom day start",
			in:          time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			dayStartsAt: 5,
			want:        time.Date(2025, 3, 10, 5, 0, 0, 0, loc),
		},
		{
			name:        "before custom day start rolls back a day",
			in:          time.Date(2025, 3, 10, 3, 0, 0, 0, loc),
			dayStartsAt: 5,
			want:        time.Date(2025, 3, 9, 5, 0, 0, 0, loc),
		},
		{
			name:        "out of range hour treated as midnight",
			in:          time.Date(2025, 3, 10, 3, 0, 0, 0, loc),
			dayStartsAt: 99,
			want:        time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignDayStart(tt.in, tt.dayStartsAt)
			if !got.Equal(tt.want) {
				t.Fatalf("AlignDayStart(%v, %d)=%v, want %v", tt.in, tt.dayStartsAt, got, tt.want)
			}
		})
	}
}

func TestCycleWindowDaily(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	start, end := CycleWindow("daily", now, 0, 0)

	if !start.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start=%v", start)
	}
	if !end.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end=%v", end)
	}
}

func TestCycleWindowWeeklyStartsMonday(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	start, end := CycleWindow("weekly", now, 0, 0)

	if start.Weekday() != time.Monday {
		t.Fatalf("start weekday=%v, want Monday", start.Weekday())
	}
	if !start.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start=%v", start)
	}
	if got := end.Sub(start); got != 7*24*time.Hour {
		t.Fatalf("window length=%v", got)
	}

	// Sunday belongs to the same window.
	sun := time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC)
	s2, _ := CycleWindow("weekly", sun, 0, 0)
	if !s2.Equal(start) {
		t.Fatalf("sunday start=%v, want %v", s2, start)
	}
}

func TestCycleWindowMonthly(t *testing.T) {
	now := time.Date(2025, 12, 20, 8, 0, 0, 0, time.UTC)
	start, end := CycleWindow("monthly", now, 0, 0)

	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start=%v", start)
	}
	// Year rollover.
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end=%v", end)
	}
}

func TestCycleWindowCustom(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	start, end := CycleWindow("custom", now, 0, 3)

	if got := end.Sub(start); got != 3*24*time.Hour {
		t.Fatalf("window length=%v", got)
	}

	// Zero interval falls back to a week.
	_, end = CycleWindow("custom", now, 0, 0)
	if got := end.Sub(start); got != 7*24*time.Hour {
		t.Fatalf("fallback window length=%v", got)
	}
}

func TestPrevCycleWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	ps, pe := PrevCycleWindow("weekly", start, 0)
	if !pe.Equal(start) || !ps.Equal(start.AddDate(0, 0, -7)) {
		t.Fatalf("weekly prev=[%v,%v)", ps, pe)
	}

	ps, pe = PrevCycleWindow("monthly", start, 0)
	if !pe.Equal(start) || !ps.Equal(start.AddDate(0, -1, 0)) {
		t.Fatalf("monthly prev=[%v,%v)", ps, pe)
	}
}
