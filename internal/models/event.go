package models

import "time"

// EventOrigin marks who recorded a behavioral event.
type EventOrigin string

const (
	OriginApp       EventOrigin = "app"
	OriginAssistant EventOrigin = "assistant"
)

// EventType enumerates the behavioral events the mobile app records.
var EventTypes = []string{"dissociation", "sadness", "anger", "anxiety", "other"}

// Activities enumerates what the participant was doing when the event hit.
var Activities = []string{"rest", "eating", "exercise", "other"}

// Location is a lat/long pair attached to an event.
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// EventRecord is one behavioral event, created by the mobile app or by trial
// staff on a participant's behalf. Read-only to the status engine.
type EventRecord struct {
	PatientID string      `json:"patient_id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType string      `json:"event_type"`
	Activity  string      `json:"activity"`
	Severity  int         `json:"severity"`
	Location  Location    `json:"location"`
	Origin    EventOrigin `json:"origin"`
}
