package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

type fakeFeeds struct {
	participants     []models.Participant
	participantsErr  error
	questionnaire    []models.QuestionnaireItem
	questionnaireErr error
	answers          map[string][]models.AnswerRecord
	answersErr       error
	events           []models.EventRecord
	eventsErr        error
}

func (f *fakeFeeds) Participants(context.Context) ([]models.Participant, error) {
	return f.participants, f.participantsErr
}

func (f *fakeFeeds) Questionnaire(context.Context) ([]models.QuestionnaireItem, error) {
	return f.questionnaire, f.questionnaireErr
}

func (f *fakeFeeds) Answers(_ context.Context, patientID string) ([]models.AnswerRecord, error) {
	if f.answersErr != nil {
		return nil, f.answersErr
	}
	return f.answers[patientID], nil
}

func (f *fakeFeeds) Events(context.Context) ([]models.EventRecord, error) {
	return f.events, f.eventsErr
}

func local(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, timeutil.Location())
	require.NoError(t, err)
	return parsed
}

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(v int) *int              { return &v }

// sundayTuesdayItems schedules question 1 on Sunday & Tuesday at 10:00 & 14:00.
func sundayTuesdayItems() []models.QuestionnaireItem {
	return []models.QuestionnaireItem{{
		QuestionID: 1,
		Weekdays:   []models.Weekday{models.Sunday, models.Tuesday},
		TimesOfDay: []models.TimeSlot{models.SlotMorning, models.SlotAfternoon},
	}}
}

func newStatusService(feeds *fakeFeeds, now time.Time) *StatusService {
	svc := NewStatusService(feeds, nil, zap.NewNop(), StatusServiceConfig{})
	svc.now = func() time.Time { return now }
	return svc
}

func TestStatusForAllActiveComputesFullRecord(t *testing.T) {
	trialStart := local(t, "2024-01-01 00:00")
	now := local(t, "2024-01-15 00:00")
	deviceUpdate := local(t, "2024-01-14 13:00")

	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants: []models.Participant{{
			PatientID:          "p-1",
			Nickname:           "alma",
			IsActive:           true,
			TrialStartingDate:  timePtr(trialStart),
			EmpaticaLastUpdate: timePtr(deviceUpdate),
			WearingStatus:      models.WearingYes,
		}},
		answers: map[string][]models.AnswerRecord{
			"p-1": {
				// Two valid answers inside the 14-day cumulative window.
				{QuestionID: 1, Answer: intPtr(2), Timestamp: local(t, "2024-01-02 10:05")},
				{QuestionID: 1, Answer: intPtr(3), Timestamp: local(t, "2024-01-14 10:30")},
			},
		},
		events: []models.EventRecord{
			{PatientID: "p-1", Timestamp: local(t, "2024-01-13 09:00")},
			{PatientID: "p-1", Timestamp: local(t, "2024-01-03 09:00")},
			{PatientID: "p-2", Timestamp: local(t, "2024-01-13 09:00")},
		},
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Statuses, 1)
	assert.True(t, report.EventsAvailable)

	status := report.Statuses[0]
	assert.Equal(t, "p-1", status.PatientID)
	assert.Equal(t, models.WearingYes, status.Wearing)

	// Eight instances scheduled in [Jan 1, Jan 15), two valid answers: 75%.
	assert.Equal(t, 75.0, status.NonResponseCumulativePct)
	// The Jan 14 submission covers the only question shown in the last 36h.
	assert.Equal(t, 0.0, status.NonResponseShortPct)

	assert.Equal(t, 1, status.EventsRecent)
	assert.Equal(t, 2, status.EventsTotal)

	require.NotNil(t, status.HoursSinceDeviceUpdate)
	assert.InDelta(t, 11.0, *status.HoursSinceDeviceUpdate, 0.001)
	// Eleven silent hours exceeds the ten-hour staleness threshold.
	assert.True(t, status.DeviceStale)
}

func TestStatusForAllActiveSkipsInactiveParticipants(t *testing.T) {
	now := local(t, "2024-01-15 00:00")
	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants: []models.Participant{
			{PatientID: "p-1", IsActive: true},
			{PatientID: "p-2", IsActive: false},
		},
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Statuses, 1)
	assert.Equal(t, "p-1", report.Statuses[0].PatientID)
}

func TestStatusForAllActiveNoAnswersIsFullyNonResponsive(t *testing.T) {
	now := local(t, "2024-01-15 00:00")
	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants: []models.Participant{{
			PatientID:         "p-1",
			IsActive:          true,
			TrialStartingDate: timePtr(local(t, "2024-01-01 00:00")),
		}},
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Statuses, 1)

	status := report.Statuses[0]
	assert.Equal(t, 100.0, status.NonResponseCumulativePct)
	// Sunday Jan 14 was shown in the rolling window and never answered.
	assert.Equal(t, 100.0, status.NonResponseShortPct)
	assert.Nil(t, status.HoursSinceDeviceUpdate)
}

func TestStatusForAllActiveRollingLookbackClampedToTrialStart(t *testing.T) {
	// The trial began twelve hours ago; a submission from before the trial
	// start must not count, and neither may slots shown before it.
	now := local(t, "2024-01-15 00:00")
	trialStart := local(t, "2024-01-14 12:00")

	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants: []models.Participant{{
			PatientID:         "p-1",
			IsActive:          true,
			TrialStartingDate: timePtr(trialStart),
		}},
		answers: map[string][]models.AnswerRecord{
			"p-1": {{QuestionID: 1, Answer: intPtr(2), Timestamp: local(t, "2024-01-14 10:05")}},
		},
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Statuses, 1)

	// Sunday 14:00 was shown after the clamped start; the only submission
	// predates the trial, so the short window reads fully missed.
	assert.Equal(t, 100.0, report.Statuses[0].NonResponseShortPct)
}

func TestStatusForAllActiveCumulativeWindowCappedAtTrialEnd(t *testing.T) {
	// Trial started Dec 1; by Jan 15 the 30-day window is over, so January
	// answers are outside it.
	now := local(t, "2024-01-15 00:00")
	trialStart := local(t, "2023-12-01 00:00")

	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants: []models.Participant{{
			PatientID:         "p-1",
			IsActive:          true,
			TrialStartingDate: timePtr(trialStart),
		}},
		answers: map[string][]models.AnswerRecord{
			"p-1": {
				// Sixteen instances in [Dec 1, Dec 31): one valid answer.
				{QuestionID: 1, Answer: intPtr(1), Timestamp: local(t, "2023-12-03 10:05")},
				{QuestionID: 1, Answer: intPtr(1), Timestamp: local(t, "2024-01-02 10:05")},
			},
		},
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Statuses, 1)
	assert.Equal(t, 94.0, report.Statuses[0].NonResponseCumulativePct)
}

func TestStatusForAllActiveMissingTrialAnchorUsesFallback(t *testing.T) {
	now := local(t, "2024-01-15 00:00")
	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants:  []models.Participant{{PatientID: "p-1", IsActive: true}},
		answers: map[string][]models.AnswerRecord{
			"p-1": {{QuestionID: 1, Answer: intPtr(2), Timestamp: local(t, "2024-01-02 10:05")}},
		},
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Statuses, 1)
	// The fallback window [Dec 16, Jan 15) holds answers, so the record is
	// computed rather than erroring on the missing anchor.
	assert.Less(t, report.Statuses[0].NonResponseCumulativePct, 100.0)
}

func TestStatusForAllActiveQuestionnaireFailurePropagates(t *testing.T) {
	feeds := &fakeFeeds{questionnaireErr: appErrors.ErrFeedUnavailable}

	_, err := newStatusService(feeds, local(t, "2024-01-15 00:00")).StatusForAllActive(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFeedUnavailable.Code, appErrors.FromError(err).Code)
}

func TestStatusForAllActiveParticipantFailurePropagates(t *testing.T) {
	feeds := &fakeFeeds{
		questionnaire:   sundayTuesdayItems(),
		participantsErr: appErrors.ErrFeedUnavailable,
	}

	_, err := newStatusService(feeds, local(t, "2024-01-15 00:00")).StatusForAllActive(context.Background())
	assert.Error(t, err)
}

func TestStatusForAllActiveEventFeedFailureDegrades(t *testing.T) {
	now := local(t, "2024-01-15 00:00")
	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants:  []models.Participant{{PatientID: "p-1", IsActive: true}},
		eventsErr:     appErrors.ErrFeedUnavailable,
	}

	report, err := newStatusService(feeds, now).StatusForAllActive(context.Background())
	require.NoError(t, err)
	assert.False(t, report.EventsAvailable)
	require.Len(t, report.Statuses, 1)
	assert.Equal(t, 0, report.Statuses[0].EventsTotal)
}

func TestStatusForAllActiveIdempotentForFixedNow(t *testing.T) {
	now := local(t, "2024-01-15 00:00")
	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		participants: []models.Participant{{
			PatientID:         "p-1",
			IsActive:          true,
			TrialStartingDate: timePtr(local(t, "2024-01-01 00:00")),
		}},
		answers: map[string][]models.AnswerRecord{
			"p-1": {{QuestionID: 1, Answer: intPtr(2), Timestamp: local(t, "2024-01-02 10:05")}},
		},
		events: []models.EventRecord{{PatientID: "p-1", Timestamp: local(t, "2024-01-13 09:00")}},
	}
	svc := newStatusService(feeds, now)

	first, err := svc.StatusForAllActive(context.Background())
	require.NoError(t, err)
	second, err := svc.StatusForAllActive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTimetableListsEveryCell(t *testing.T) {
	feeds := &fakeFeeds{questionnaire: sundayTuesdayItems()}
	svc := newStatusService(feeds, local(t, "2024-01-15 00:00"))

	timetable, err := svc.Timetable(context.Background())
	require.NoError(t, err)
	require.Len(t, timetable.Slots, 3)

	morning := timetable.Slots[0]
	assert.Equal(t, "10:00", morning.Slot)
	assert.Len(t, morning.Days, 7)
	assert.Equal(t, []int{1}, morning.Days["Sunday"])
	assert.Empty(t, morning.Days["Monday"])
}

func TestComplianceWindowModes(t *testing.T) {
	feeds := &fakeFeeds{
		questionnaire: sundayTuesdayItems(),
		answers: map[string][]models.AnswerRecord{
			"p-1": {{QuestionID: 1, Answer: intPtr(2), Timestamp: local(t, "2024-01-02 10:05")}},
		},
	}
	svc := newStatusService(feeds, local(t, "2024-01-15 00:00"))
	start, end := local(t, "2024-01-01 00:00"), local(t, "2024-01-15 00:00")

	rolling, err := svc.ComplianceWindow(context.Background(), "p-1", start, end, dto.ModeRolling)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rolling.NonResponsePct)

	cumulative, err := svc.ComplianceWindow(context.Background(), "p-1", start, end, dto.ModeCumulative)
	require.NoError(t, err)
	assert.Equal(t, 88.0, cumulative.NonResponsePct)
	assert.Equal(t, 1, cumulative.ValidAnswers)
	assert.Equal(t, 8, cumulative.ScheduledInstances)

	_, err = svc.ComplianceWindow(context.Background(), "p-1", start, end, "weird")
	assert.Error(t, err)
}
