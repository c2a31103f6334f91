package filter

import (
	"fmt"
	"strings"
	"time"

	"kyri56xcaesar/pms-workspace/internal/models"
)

// WeekLength is the number of days a calendar window covers.
const WeekLength = 7

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTaskDate parses a task start/end timestamp. Values without a zone are
// read in loc; zoned values are converted to loc.
func ParseTaskDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Week is a window of WeekLength consecutive calendar days.
type Week struct {
	Days []time.Time
	loc  *time.Location
}

// Placement is a task drawn on the calendar: once, on its first overlapping
// day of the window, stretched over Span days.
type Placement struct {
	Task models.Task `json:"task"`
	Day  int         `json:"day"`
	Span int         `json:"span"`
}

// NewWeek builds the window starting on the calendar day of anchor, in the
// anchor's location.
func NewWeek(anchor time.Time) Week {
	loc := anchor.Location()
	y, m, d := anchor.Date()
	days := make([]time.Time, WeekLength)
	for i := range days {
		days[i] = time.Date(y, m, d+i, 0, 0, 0, 0, loc)
	}

	return Week{Days: days, loc: loc}
}

// Start is the first day of the window.
func (w Week) Start() time.Time { return w.Days[0] }

// End is the last day of the window.
func (w Week) End() time.Time { return w.Days[len(w.Days)-1] }

func (w Week) day(t time.Time) time.Time {
	y, m, d := t.In(w.loc).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, w.loc)
}

// bounds returns the calendar days a task runs from and to.
func (w Week) bounds(task models.Task) (time.Time, time.Time, bool) {
	start, err := ParseTaskDate(task.StartDate, w.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := ParseTaskDate(task.EndDate, w.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	startDay, endDay := w.day(start), w.day(end)
	if endDay.Before(startDay) {
		return time.Time{}, time.Time{}, false
	}

	return startDay, endDay, true
}

// OnDay reports whether task runs on the i-th day of the window, both ends
// inclusive. Tasks with unreadable or inverted dates are on no day.
func (w Week) OnDay(task models.Task, i int) bool {
	if i < 0 || i >= len(w.Days) {
		return false
	}
	start, end, ok := w.bounds(task)
	if !ok {
		return false
	}
	d := w.Days[i]

	return !d.Before(start) && !d.After(end)
}

// Place lays tasks out on the window. The result has one slot per day; a task
// appears only in the slot of its first overlapping day, with its span
// clipped to the window. Tasks wholly outside the window are left out.
func (w Week) Place(tasks []models.Task) [][]Placement {
	out := make([][]Placement, len(w.Days))
	for i := range out {
		out[i] = []Placement{}
	}

	for _, t := range tasks {
		start, end, ok := w.bounds(t)
		if !ok {
			continue
		}
		first, last := -1, -1
		for i, d := range w.Days {
			if d.Before(start) || d.After(end) {
				continue
			}
			if first < 0 {
				first = i
			}
			last = i
		}
		if first < 0 {
			continue
		}
		out[first] = append(out[first], Placement{Task: t, Day: first, Span: last - first + 1})
	}

	return out
}
