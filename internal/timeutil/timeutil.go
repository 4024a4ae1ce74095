package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// ReferenceZone is the trial's reference timezone. The questionnaire schedule
// is defined in Israel wall-clock time, so every timestamp comparison in the
// status engine happens in this zone.
const ReferenceZone = "Asia/Jerusalem"

var referenceLocation *time.Location

func init() {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		panic(fmt.Sprintf("load reference timezone %s: %v", ReferenceZone, err))
	}
	referenceLocation = loc
}

// Location returns the reference *time.Location.
func Location() *time.Location {
	return referenceLocation
}

// In converts any instant into the reference timezone.
func In(t time.Time) time.Time {
	return t.In(referenceLocation)
}

// Now returns the current instant in the reference timezone.
func Now() time.Time {
	return time.Now().In(referenceLocation)
}

// StartOfDay truncates an instant to midnight of its reference-zone day.
func StartOfDay(t time.Time) time.Time {
	t = In(t)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, referenceLocation)
}

// Feed timestamp layouts observed across the upstream collections. Event rows
// arrive both with and without fractional seconds, participant fields as
// RFC3339 with an offset.
var feedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseFeedTime parses an upstream timestamp string. Naive timestamps are
// localized to the reference zone, never compared as UTC. This is the single
// normalization boundary for every timestamp field the service ingests.
func ParseFeedTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range feedLayouts {
		if hasOffset(layout) {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.In(referenceLocation), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, raw, referenceLocation); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", raw)
}

// ParseFeedTimeUTC parses a naive upstream timestamp that is known to be
// stored in UTC (the mobile app posts event times this way) and converts it
// into the reference zone.
func ParseFeedTimeUTC(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02 15:04:05.000000", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.In(referenceLocation), nil
		}
	}
	return ParseFeedTime(raw)
}

// FormatEventTimestamp renders an instant the way the mobile backend expects
// event times: naive UTC with microsecond precision.
func FormatEventTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.000000")
}

func hasOffset(layout string) bool {
	return strings.Contains(layout, "Z07:00")
}
