package executor

import (
	"testing"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/alta"
)

// now is a fixed reference instant for the boundary tests:
// 2024-03-15 10:30 UTC.
var now = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func eventAt(t time.Time, guid string) alta.AccessEvent {
	return alta.EventFromMap(map[string]any{
		"time": float64(t.UnixMilli()),
		"guid": guid,
	})
}

func guids(events []alta.AccessEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.GUID)
	}
	return out
}

func TestTodayAndYesterdayPartitionAtMidnight(t *testing.T) {
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	events := []alta.AccessEvent{
		eventAt(midnight.Add(-time.Millisecond), "last-yesterday"),
		eventAt(midnight, "exactly-midnight"),
		eventAt(midnight.Add(time.Hour), "this-morning"),
		eventAt(midnight.Add(-24*time.Hour), "yesterday-start"),
		eventAt(midnight.Add(-25*time.Hour), "two-days-ago"),
	}

	today := FilterToday(events, now)
	yesterday := FilterYesterday(events, now)

	wantToday := map[string]bool{"exactly-midnight": true, "this-morning": true}
	wantYesterday := map[string]bool{"last-yesterday": true, "yesterday-start": true}

	for _, g := range guids(today) {
		if !wantToday[g] {
			t.Errorf("today contains unexpected %q", g)
		}
		delete(wantToday, g)
	}
	for g := range wantToday {
		t.Errorf("today missing %q", g)
	}
	for _, g := range guids(yesterday) {
		if !wantYesterday[g] {
			t.Errorf("yesterday contains unexpected %q", g)
		}
		delete(wantYesterday, g)
	}
	for g := range wantYesterday {
		t.Errorf("yesterday missing %q", g)
	}
}

func TestFilterLastNDaysUsesCurrentInstant(t *testing.T) {
	// The 7-day boundary is now-7d (10:30), not midnight.
	events := []alta.AccessEvent{
		eventAt(now.Add(-7*24*time.Hour+time.Minute), "just-inside"),
		eventAt(now.Add(-7*24*time.Hour-time.Minute), "just-outside"),
	}

	got := guids(FilterLastNDays(events, now, 7))
	if len(got) != 1 || got[0] != "just-inside" {
		t.Errorf("FilterLastNDays = %v, want [just-inside]", got)
	}
}

func TestRangeFiltersExcludeEventsWithoutTime(t *testing.T) {
	events := []alta.AccessEvent{
		alta.EventFromMap(map[string]any{"guid": "no-time"}),
		alta.EventFromMap(map[string]any{"guid": "string-time", "time": "2024-03-15T01:00:00Z"}),
		eventAt(now.Add(-time.Hour), "timed"),
	}

	if got := guids(FilterToday(events, now)); len(got) != 1 || got[0] != "timed" {
		t.Errorf("FilterToday = %v, want [timed]", got)
	}
	if got := guids(FilterLastNDays(events, now, 30)); len(got) != 1 || got[0] != "timed" {
		t.Errorf("FilterLastNDays = %v, want [timed]", got)
	}
}

func TestFilterDenied(t *testing.T) {
	events := []alta.AccessEvent{
		alta.EventFromMap(map[string]any{"guid": "denied", "event_type": "ACCESS_DENIED"}),
		alta.EventFromMap(map[string]any{"guid": "failed-name", "event_type": "OTHER", "event_name": "Entry Failed"}),
		alta.EventFromMap(map[string]any{"guid": "denied-name", "event_type": "OTHER", "event_name": "Access denied by schedule"}),
		alta.EventFromMap(map[string]any{"guid": "granted", "event_type": "ACCESS_GRANTED"}),
		// Held-open events are excluded even when their name says "failed".
		alta.EventFromMap(map[string]any{"guid": "held", "event_type": "HELD_OPEN", "event_name": "close failed"}),
		alta.EventFromMap(map[string]any{"guid": "held-end", "event_type": "HELD_OPEN_ENDED", "event_name": "denied closing"}),
	}

	got := guids(FilterDenied(events))
	want := []string{"denied", "failed-name", "denied-name"}
	if len(got) != len(want) {
		t.Fatalf("FilterDenied = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FilterDenied[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterGranted(t *testing.T) {
	events := []alta.AccessEvent{
		alta.EventFromMap(map[string]any{"guid": "g1", "event_type": "ACCESS_GRANTED"}),
		alta.EventFromMap(map[string]any{"guid": "d1", "event_type": "ACCESS_DENIED"}),
		alta.EventFromMap(map[string]any{"guid": "o1", "event_type": "OTHER", "event_name": "granted maybe"}),
	}

	got := guids(FilterGranted(events))
	if len(got) != 1 || got[0] != "g1" {
		t.Errorf("FilterGranted = %v, want [g1]", got)
	}
}

func TestMostRecent(t *testing.T) {
	if got := MostRecent(nil); got != nil {
		t.Error("MostRecent(nil) must be nil")
	}

	events := []alta.AccessEvent{
		eventAt(now.Add(-2*time.Hour), "older"),
		eventAt(now.Add(-time.Hour), "newest"),
		alta.EventFromMap(map[string]any{"guid": "no-time"}),
	}
	got := MostRecent(events)
	if got == nil || got.GUID != "newest" {
		t.Errorf("MostRecent = %+v, want newest", got)
	}

	onlyUntimed := []alta.AccessEvent{alta.EventFromMap(map[string]any{"guid": "no-time"})}
	if got := MostRecent(onlyUntimed); got != nil {
		t.Error("MostRecent over untimed events must be nil")
	}
}

func TestSortByTimeDesc(t *testing.T) {
	events := []alta.AccessEvent{
		eventAt(now.Add(-3*time.Hour), "c"),
		alta.EventFromMap(map[string]any{"guid": "untimed"}),
		eventAt(now.Add(-time.Hour), "a"),
		eventAt(now.Add(-2*time.Hour), "b"),
	}

	got := guids(SortByTimeDesc(events))
	want := []string{"a", "b", "c", "untimed"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortByTimeDesc = %v, want %v", got, want)
		}
	}

	// Input order is untouched.
	if events[0].GUID != "c" {
		t.Error("SortByTimeDesc must not mutate its input")
	}
}
