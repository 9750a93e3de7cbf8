// Package calendar centralizes local calendar-day arithmetic. Every function
// takes explicit time values so callers stay deterministic under injected
// clocks.
package calendar

import "time"

// SameDay reports whether both timestamps fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// Yesterday returns a timestamp on the calendar day immediately preceding now.
func Yesterday(now time.Time) time.Time {
	return now.AddDate(0, 0, -1)
}

// StartOfDay truncates the timestamp to local midnight.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Local().Location())
}

// DayKey formats the local calendar day as YYYY-MM-DD, used for per-day locks.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
