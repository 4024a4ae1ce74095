package dto

import (
	"time"

	"github.com/traumalab/trial-monitor-api/internal/models"
)

// Reconciliation modes for arbitrary compliance windows.
const (
	ModeRolling    = "rolling"
	ModeCumulative = "cumulative"
)

// StatusReport is the full dashboard status table for one refresh.
// EventsAvailable=false tells the UI to render an inline error on the events
// columns while the rest of the table stays usable.
type StatusReport struct {
	GeneratedAt     time.Time                  `json:"generatedAt"`
	Statuses        []models.ParticipantStatus `json:"statuses"`
	EventsAvailable bool                       `json:"eventsAvailable"`
}

// TimetableRow is one time slot across the week.
type TimetableRow struct {
	Slot string           `json:"slot"`
	Days map[string][]int `json:"days"`
}

// TimetableResponse is the weekly questionnaire grid.
type TimetableResponse struct {
	Slots []TimetableRow `json:"slots"`
}

// ComplianceWindowResponse reconciles one participant over a custom window.
type ComplianceWindowResponse struct {
	PatientID          string    `json:"patientId"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	Mode               string    `json:"mode"`
	NonResponsePct     float64   `json:"nonResponsePct"`
	ValidAnswers       int       `json:"validAnswers,omitempty"`
	ScheduledInstances int       `json:"scheduledInstances,omitempty"`
}
