package compliance

import (
	"time"

	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
)

// Window bounds an event count. A nil *Window counts everything.
type Window struct {
	Start time.Time
	End   time.Time
}

// CountEvents counts a participant's behavioral events, optionally limited to
// a window. Event timestamps are normalized into the reference timezone
// before comparison.
func CountEvents(events []models.EventRecord, patientID string, window *Window) int {
	count := 0
	for _, event := range events {
		if event.PatientID != patientID {
			continue
		}
		if window != nil && !inWindow(event.Timestamp, timeutil.In(window.Start), timeutil.In(window.End)) {
			continue
		}
		count++
	}
	return count
}
