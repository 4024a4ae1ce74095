package schedule

import (
	"time"

	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
)

// malformedWindowFallback substitutes for the end of a window whose caller
// passed end before start. Downstream reconcilers rely on this permissive
// behavior, so it is a documented policy rather than an error.
// Open question for the study owners: is a 36-hour substitute window the
// intended reading of a malformed request, or should it be rejected?
const malformedWindowFallback = 36 * time.Hour

// normalizeWindow moves both bounds into the reference timezone and applies
// the malformed-window fallback. Windows are half-open: [start, end).
func normalizeWindow(start, end time.Time) (time.Time, time.Time) {
	start = timeutil.In(start)
	end = timeutil.In(end)
	if end.Before(start) {
		end = start.Add(malformedWindowFallback)
	}
	return start, end
}

// forEachSlot walks every concrete (day, slot) instant inside [start, end),
// expanding the window day by day in the reference timezone.
func (g *Grid) forEachSlot(start, end time.Time, fn func(day models.Weekday, slot models.TimeSlot)) {
	start, end = normalizeWindow(start, end)

	firstDay := timeutil.StartOfDay(start)
	lastDay := timeutil.StartOfDay(end)

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		weekday := models.WeekdayOf(day)
		for _, slot := range models.TimeSlots {
			candidate := time.Date(day.Year(), day.Month(), day.Day(),
				slot.Hour(), 0, 0, 0, timeutil.Location())
			if candidate.Before(start) || !candidate.Before(end) {
				continue
			}
			fn(weekday, slot)
		}
	}
}

// CountInstances returns the total number of scheduled question instances
// inside the window. Recurring questions count once per occurrence, which is
// what cumulative non-response calculations divide by.
func (g *Grid) CountInstances(start, end time.Time) int {
	total := 0
	g.forEachSlot(start, end, func(day models.Weekday, slot models.TimeSlot) {
		total += g.CellSize(day, slot)
	})
	return total
}

// QuestionIDsWithin returns the deduplicated set of question IDs scheduled
// at least once inside the window, the "what was shown" set for short
// rolling windows.
func (g *Grid) QuestionIDsWithin(start, end time.Time) map[int]struct{} {
	shown := make(map[int]struct{})
	g.forEachSlot(start, end, func(day models.Weekday, slot models.TimeSlot) {
		for _, id := range g.Questions(day, slot) {
			shown[id] = struct{}{}
		}
	})
	return shown
}
