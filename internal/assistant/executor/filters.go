package executor

// filters.go implements the date-range and outcome filters over access
// events. Boundary semantics are deliberately asymmetric: "today" and
// "yesterday" are anchored at UTC midnight, while "last N days" is anchored
// at the current instant minus N days. Events without a numeric timestamp
// are silently excluded from every range filter.

import (
	"sort"
	"strings"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/alta"
)

// midnightUTC returns 00:00 UTC of the day containing t.
func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterToday keeps events at or after today's UTC midnight.
func FilterToday(events []alta.AccessEvent, now time.Time) []alta.AccessEvent {
	start := midnightUTC(now).UnixMilli()
	var out []alta.AccessEvent
	for _, e := range events {
		if e.HasTime && e.TimeMS >= start {
			out = append(out, e)
		}
	}
	return out
}

// FilterYesterday keeps events in the half-open interval
// [yesterday 00:00 UTC, today 00:00 UTC). An event at exactly midnight
// belongs to today, never to both days.
func FilterYesterday(events []alta.AccessEvent, now time.Time) []alta.AccessEvent {
	end := midnightUTC(now).UnixMilli()
	start := midnightUTC(now.Add(-24 * time.Hour)).UnixMilli()
	var out []alta.AccessEvent
	for _, e := range events {
		if e.HasTime && e.TimeMS >= start && e.TimeMS < end {
			out = append(out, e)
		}
	}
	return out
}

// FilterLastNDays keeps events at or after now minus n days. The boundary
// is the current instant, not midnight.
func FilterLastNDays(events []alta.AccessEvent, now time.Time, n int) []alta.AccessEvent {
	start := now.UTC().Add(-time.Duration(n) * 24 * time.Hour).UnixMilli()
	var out []alta.AccessEvent
	for _, e := range events {
		if e.HasTime && e.TimeMS >= start {
			out = append(out, e)
		}
	}
	return out
}

// FilterDenied keeps denied access attempts. Held-open events are excluded
// first: their names often contain "failed"/"denied"-adjacent wording but
// they are door-state notices, not denials.
func FilterDenied(events []alta.AccessEvent) []alta.AccessEvent {
	var out []alta.AccessEvent
	for _, e := range events {
		if e.EventType == "HELD_OPEN" || e.EventType == "HELD_OPEN_ENDED" {
			continue
		}
		name := strings.ToLower(e.EventName)
		if e.EventType == "ACCESS_DENIED" || strings.Contains(name, "failed") || strings.Contains(name, "denied") {
			out = append(out, e)
		}
	}
	return out
}

// FilterGranted keeps successful entries (ACCESS_GRANTED only).
func FilterGranted(events []alta.AccessEvent) []alta.AccessEvent {
	var out []alta.AccessEvent
	for _, e := range events {
		if e.EventType == "ACCESS_GRANTED" {
			out = append(out, e)
		}
	}
	return out
}

// MostRecent returns the newest event, or nil when the input has no events
// with a usable timestamp.
func MostRecent(events []alta.AccessEvent) *alta.AccessEvent {
	var best *alta.AccessEvent
	for i := range events {
		e := &events[i]
		if !e.HasTime {
			continue
		}
		if best == nil || e.TimeMS > best.TimeMS {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	newest := *best
	return &newest
}

// SortByTimeDesc returns a copy sorted newest first. The sort is stable so
// equal timestamps keep their input order; events without a timestamp sink
// to the end.
func SortByTimeDesc(events []alta.AccessEvent) []alta.AccessEvent {
	out := make([]alta.AccessEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasTime != out[j].HasTime {
			return out[i].HasTime
		}
		return out[i].TimeMS > out[j].TimeMS
	})
	return out
}
