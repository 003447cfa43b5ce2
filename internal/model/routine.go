package model

import "fmt"

// RoutineEntry is one daily-routine window of an NPC: between Start and Stop
// the NPC runs behavior State near waypoint Waypoint.
// The window may wrap past midnight (Stop < Start).
// Static, loaded with the NPC; read-only at runtime.
type RoutineEntry struct {
	Start    TimeOfDay
	Stop     TimeOfDay
	State    string
	Waypoint string
}

// Contains reports whether the window is active at time t.
// A wrapping window [22:00, 06:00) is active when t >= start OR t < stop.
func (r RoutineEntry) Contains(t TimeOfDay) bool {
	start := r.Start.MinuteOfDay()
	stop := r.Stop.MinuteOfDay()
	m := t.MinuteOfDay()
	if start == stop {
		// Degenerate full-day window.
		return true
	}
	if start < stop {
		return m >= start && m < stop
	}
	return m >= start || m < stop
}

// Key returns the composite routine identity used to detect routine changes.
func (r RoutineEntry) Key() string {
	return fmt.Sprintf("%s|%s|%d|%d", r.State, r.Waypoint, r.Start.MinuteOfDay(), r.Stop.MinuteOfDay())
}

// ActiveRoutine returns the first entry whose window contains t, or false
// when no window matches (treated as "no active routine", not an error).
func ActiveRoutine(entries []RoutineEntry, t TimeOfDay) (RoutineEntry, bool) {
	for _, e := range entries {
		if e.Contains(t) {
			return e, true
		}
	}
	return RoutineEntry{}, false
}
