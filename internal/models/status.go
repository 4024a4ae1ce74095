package models

// ParticipantStatus is the per-participant compliance record the dashboard
// renders. Derived on every refresh, never persisted.
type ParticipantStatus struct {
	PatientID string        `json:"patient_id"`
	Nickname  string        `json:"nickname"`
	Wearing   WearingStatus `json:"wearing_status"`

	// HoursSinceDeviceUpdate is nil when the wristband never reported in;
	// the presentation layer renders that as "N/A", not as an error.
	HoursSinceDeviceUpdate *float64 `json:"hours_since_device_update,omitempty"`

	// DeviceStale flags a wristband silent for longer than the configured
	// threshold, so the dashboard can highlight the row.
	DeviceStale bool `json:"device_stale"`

	NonResponseShortPct      float64 `json:"nonresponse_pct_short_window"`
	NonResponseCumulativePct float64 `json:"nonresponse_pct_cumulative"`

	EventsRecent int `json:"events_recent"`
	EventsTotal  int `json:"events_total"`
}
