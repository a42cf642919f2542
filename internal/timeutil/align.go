package timeutil

import "time"

// AlignDayStart truncates t to the most recent day boundary, where a "day"
// begins at dayStartsAt o'clock (0-23) rather than midnight. Times earlier
// than the boundary hour belong to the previous day.
func AlignDayStart(t time.Time, dayStartsAt int) time.Time {
	if dayStartsAt < 0 || dayStartsAt > 23 {
		dayStartsAt = 0
	}
	aligned := time.Date(t.Year(), t.Month(), t.Day(), dayStartsAt, 0, 0, 0, t.Location())
	if t.Hour() < dayStartsAt {
		aligned = aligned.AddDate(0, 0, -1)
	}
	return aligned
}

// CycleWindow returns the half-open [start, end) window containing t for the
// given cadence. Weekly windows start on Monday, monthly on the 1st, custom
// windows span intervalDays anchored at the aligned day start.
func CycleWindow(cadence string, t time.Time, dayStartsAt, intervalDays int) (time.Time, time.Time) {
	aligned := AlignDayStart(t, dayStartsAt)

	switch cadence {
	case "daily":
		return aligned, aligned.AddDate(0, 0, 1)
	case "weekly":
		start := aligned.AddDate(0, 0, -daysSinceMonday(aligned))
		return start, start.AddDate(0, 0, 7)
	case "monthly":
		start := time.Date(aligned.Year(), aligned.Month(), 1, aligned.Hour(), 0, 0, 0, aligned.Location())
		return start, start.AddDate(0, 1, 0)
	case "custom":
		if intervalDays < 1 {
			intervalDays = 7
		}
		return aligned, aligned.AddDate(0, 0, intervalDays)
	default:
		// Unrecognized cadences fall back to weekly, same as the stored default.
		start := aligned.AddDate(0, 0, -daysSinceMonday(aligned))
		return start, start.AddDate(0, 0, 7)
	}
}

// PrevCycleWindow returns the half-open window ending at start (the window
// immediately before the one beginning at start).
func PrevCycleWindow(cadence string, start time.Time, intervalDays int) (time.Time, time.Time) {
	switch cadence {
	case "daily":
		return start.AddDate(0, 0, -1), start
	case "monthly":
		return start.AddDate(0, -1, 0), start
	case "custom":
		if intervalDays < 1 {
			intervalDays = 7
		}
		return start.AddDate(0, 0, -intervalDays), start
	default: // weekly and fallbacks
		return start.AddDate(0, 0, -7), start
	}
}

func daysSinceMonday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 { // Sunday
		return 6
	}
	return wd - 1
}
