package dto

// RegisterParticipantRequest is the staff form payload for enrolling a new
// participant. Date and time are Israel wall-clock values combined and
// localized before they reach the upstream API.
type RegisterParticipantRequest struct {
	Nickname       string `json:"nickname" validate:"required"`
	Phone          string `json:"phone" validate:"omitempty,e164"`
	EmpaticaID     string `json:"empaticaId"`
	FirebaseID     string `json:"firebaseId"`
	TrialStartDate string `json:"trialStartDate" validate:"omitempty,datetime=2006-01-02"`
	TrialStartTime string `json:"trialStartTime" validate:"omitempty,datetime=15:04"`
}

// UpdateParticipantRequest patches participant fields. Only non-empty fields
// are forwarded upstream.
type UpdateParticipantRequest struct {
	Nickname       string `json:"nickname"`
	Phone          string `json:"phone" validate:"omitempty,e164"`
	EmpaticaID     string `json:"empaticaId"`
	FirebaseID     string `json:"firebaseId"`
	TrialStartDate string `json:"trialStartDate" validate:"omitempty,datetime=2006-01-02"`
	TrialStartTime string `json:"trialStartTime" validate:"omitempty,datetime=15:04"`
	IsActive       *bool  `json:"isActive"`
}

// LogEventRequest is the staff form payload for recording a behavioral event
// on a participant's behalf.
type LogEventRequest struct {
	PatientID string  `json:"patientId" validate:"required"`
	EventType string  `json:"eventType" validate:"required,event_type"`
	Activity  string  `json:"activity" validate:"required,activity"`
	Severity  int     `json:"severity" validate:"min=0,max=4"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string  `json:"time" validate:"required,datetime=15:04"`
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
}

// PushNotificationRequest asks the upstream API to deliver a mobile push.
type PushNotificationRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}
