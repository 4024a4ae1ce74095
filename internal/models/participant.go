package models

import "time"

// WearingStatus reports whether the Empatica wristband is currently worn.
// The feed is tri-state: some device firmwares never report it.
type WearingStatus string

const (
	WearingYes     WearingStatus = "true"
	WearingNo      WearingStatus = "false"
	WearingUnknown WearingStatus = "unknown"
)

// Participant is a trial subject as registered with the upstream API.
// TrialStartingDate anchors all cumulative-window calculations; when absent
// the engine substitutes a documented fallback lookback instead.
type Participant struct {
	PatientID          string        `json:"patient_id"`
	Nickname           string        `json:"nickname"`
	Phone              string        `json:"phone"`
	EmpaticaID         string        `json:"empatica_id"`
	FirebaseID         string        `json:"firebase_id"`
	IsActive           bool          `json:"is_active"`
	TrialStartingDate  *time.Time    `json:"trial_starting_date,omitempty"`
	EmpaticaLastUpdate *time.Time    `json:"empatica_last_update,omitempty"`
	WearingStatus      WearingStatus `json:"empatica_wearing_status"`
}
