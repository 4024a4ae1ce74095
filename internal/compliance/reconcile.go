// Package compliance reconciles a participant's answer log against the
// questionnaire schedule and derives non-response percentages.
package compliance

import (
	"math"
	"time"

	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/schedule"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
)

// inWindow reports whether an instant falls inside [start, end), compared in
// the reference timezone.
func inWindow(t, start, end time.Time) bool {
	t = timeutil.In(t)
	return !t.Before(start) && t.Before(end)
}

// RollingNonResponse computes the short-window non-response percentage: the
// share of questions shown inside [start, end) that the participant never
// submitted in that window. Any submission counts as answered here, valid or
// not. An empty displayed set yields 0.0: nothing was asked, so nothing was
// missed.
func RollingNonResponse(grid *schedule.Grid, answers []models.AnswerRecord, start, end time.Time) float64 {
	start, end = timeutil.In(start), timeutil.In(end)

	displayed := grid.QuestionIDsWithin(start, end)
	if len(displayed) == 0 {
		return 0.0
	}

	answered := make(map[int]struct{}, len(answers))
	for _, record := range answers {
		if inWindow(record.Timestamp, start, end) {
			answered[record.QuestionID] = struct{}{}
		}
	}

	missed := 0
	for id := range displayed {
		if _, ok := answered[id]; !ok {
			missed++
		}
	}

	return 100.0 * float64(missed) / float64(len(displayed))
}

// CumulativeNonResponse computes the trial-to-date non-response percentage.
// The denominator counts every scheduled instance in [start, end) because the
// same question recurs weekly; the numerator counts valid answers only
// (present and on the 0..4 scale). The result is rounded to the nearest
// integer. A window with nothing scheduled reports 100.0, fully
// non-responsive by policy rather than undefined.
func CumulativeNonResponse(grid *schedule.Grid, answers []models.AnswerRecord, start, end time.Time) float64 {
	start, end = timeutil.In(start), timeutil.In(end)

	totalDisplayed := grid.CountInstances(start, end)
	if totalDisplayed == 0 {
		return 100.0
	}

	valid := CountValidAnswers(answers, start, end)

	pct := 100.0 * (1.0 - float64(valid)/float64(totalDisplayed))
	return math.Round(pct)
}

// CountValidAnswers counts answer records inside [start, end) that carry a
// valid answer value. Exposed so the dashboard can reconcile arbitrary
// operator-chosen windows.
func CountValidAnswers(answers []models.AnswerRecord, start, end time.Time) int {
	start, end = timeutil.In(start), timeutil.In(end)

	count := 0
	for _, record := range answers {
		if record.Valid() && inWindow(record.Timestamp, start, end) {
			count++
		}
	}
	return count
}
