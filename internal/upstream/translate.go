package upstream

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

// Wire types mirror the upstream JSON exactly; the toModel methods are the
// one place camelCase field names and loose timestamp formats get normalized.

type wireParticipant struct {
	PatientID             string          `json:"patientId"`
	NickName              string          `json:"nickName"`
	Phone                 string          `json:"phone"`
	EmpaticaID            string          `json:"empaticaId"`
	FirebaseID            string          `json:"firebaseId"`
	IsActive              bool            `json:"isActive"`
	TrialStartingDate     string          `json:"trialStartingDate"`
	EmpaticaLastUpdate    string          `json:"empaticaLastUpdate"`
	EmpaticaWearingStatus json.RawMessage `json:"empaticaWearingStatus"`
}

func (w wireParticipant) toModel(logger *zap.Logger) models.Participant {
	p := models.Participant{
		PatientID:     w.PatientID,
		Nickname:      w.NickName,
		Phone:         w.Phone,
		EmpaticaID:    w.EmpaticaID,
		FirebaseID:    w.FirebaseID,
		IsActive:      w.IsActive,
		WearingStatus: parseWearingStatus(w.EmpaticaWearingStatus),
	}
	p.TrialStartingDate = parseOptionalTime(w.TrialStartingDate, "trialStartingDate", w.PatientID, logger)
	p.EmpaticaLastUpdate = parseOptionalTime(w.EmpaticaLastUpdate, "empaticaLastUpdate", w.PatientID, logger)
	return p
}

func parseOptionalTime(raw, field, patientID string, logger *zap.Logger) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := timeutil.ParseFeedTime(raw)
	if err != nil {
		if logger != nil {
			logger.Warn("unparseable participant timestamp",
				zap.String("field", field),
				zap.String("patient_id", patientID),
				zap.String("raw", raw),
			)
		}
		return nil
	}
	return &t
}

// parseWearingStatus tolerates the tri-state feed: a JSON bool, the strings
// "true"/"false", or nothing at all.
func parseWearingStatus(raw json.RawMessage) models.WearingStatus {
	if len(raw) == 0 {
		return models.WearingUnknown
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return models.WearingYes
		}
		return models.WearingNo
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return models.WearingYes
		case "false":
			return models.WearingNo
		}
	}

	return models.WearingUnknown
}

type wireQuestionnaireItem struct {
	Num      int    `json:"num"`
	Type     string `json:"type"`
	Question string `json:"question"`
	Days     []int  `json:"days"`
	Hours    []int  `json:"hours"`
}

func (w wireQuestionnaireItem) toModel() (models.QuestionnaireItem, error) {
	item := models.QuestionnaireItem{
		QuestionID: w.Num,
		Text:       w.Question,
		Category:   w.Type,
		Weekdays:   make([]models.Weekday, 0, len(w.Days)),
		TimesOfDay: make([]models.TimeSlot, 0, len(w.Hours)),
	}

	for _, day := range w.Days {
		weekday, ok := models.WeekdayFromFeed(day)
		if !ok {
			return models.QuestionnaireItem{}, appErrors.Clone(appErrors.ErrConfiguration,
				"questionnaire item references an unknown weekday")
		}
		item.Weekdays = append(item.Weekdays, weekday)
	}

	for _, hour := range w.Hours {
		slot, ok := models.SlotFromFeed(hour)
		if !ok {
			return models.QuestionnaireItem{}, appErrors.Clone(appErrors.ErrConfiguration,
				"questionnaire item references an unknown time slot")
		}
		item.TimesOfDay = append(item.TimesOfDay, slot)
	}

	return item, nil
}

type wireAnswer struct {
	QuestionNum int    `json:"questionNum"`
	Answer      *int   `json:"answer"`
	Timestamp   string `json:"timestamp"`
}

func (w wireAnswer) toModel(logger *zap.Logger) (models.AnswerRecord, bool) {
	t, err := timeutil.ParseFeedTime(w.Timestamp)
	if err != nil {
		if logger != nil {
			logger.Warn("dropping answer with unparseable timestamp",
				zap.Int("question_num", w.QuestionNum),
				zap.String("raw", w.Timestamp),
			)
		}
		return models.AnswerRecord{}, false
	}
	return models.AnswerRecord{
		QuestionID: w.QuestionNum,
		Answer:     w.Answer,
		Timestamp:  t,
	}, true
}

type wireEvent struct {
	PatientID string          `json:"patientId"`
	Timestamp string          `json:"timestamp"`
	EventType string          `json:"eventType"`
	Activity  string          `json:"activity"`
	Severity  int             `json:"severity"`
	Location  models.Location `json:"location"`
	Origin    string          `json:"origin"`
}

func (w wireEvent) toModel(logger *zap.Logger) (models.EventRecord, bool) {
	// Event times are stored naive in UTC by the mobile backend, with and
	// without fractional seconds.
	t, err := timeutil.ParseFeedTimeUTC(w.Timestamp)
	if err != nil {
		if logger != nil {
			logger.Warn("dropping event with unparseable timestamp",
				zap.String("patient_id", w.PatientID),
				zap.String("raw", w.Timestamp),
			)
		}
		return models.EventRecord{}, false
	}
	return models.EventRecord{
		PatientID: w.PatientID,
		Timestamp: t,
		EventType: w.EventType,
		Activity:  w.Activity,
		Severity:  w.Severity,
		Location:  w.Location,
		Origin:    models.EventOrigin(w.Origin),
	}, true
}
