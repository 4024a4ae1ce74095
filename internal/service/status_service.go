package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/compliance"
	"github.com/traumalab/trial-monitor-api/internal/dto"
	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/schedule"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
	"github.com/traumalab/trial-monitor-api/pkg/config"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

type feedSource interface {
	Participants(ctx context.Context) ([]models.Participant, error)
	Questionnaire(ctx context.Context) ([]models.QuestionnaireItem, error)
	Answers(ctx context.Context, patientID string) ([]models.AnswerRecord, error)
	Events(ctx context.Context) ([]models.EventRecord, error)
}

// StatusServiceConfig carries the study protocol constants.
type StatusServiceConfig struct {
	TrialDuration      time.Duration
	FallbackLookback   time.Duration
	RollingWindow      time.Duration
	RecentEventsWindow time.Duration
	StaleDeviceAfter   time.Duration
}

// FromTrialConfig converts the flat env config into engine durations.
func FromTrialConfig(cfg config.TrialConfig) StatusServiceConfig {
	return StatusServiceConfig{
		TrialDuration:      time.Duration(cfg.DurationDays) * 24 * time.Hour,
		FallbackLookback:   time.Duration(cfg.FallbackLookbackDays) * 24 * time.Hour,
		RollingWindow:      time.Duration(cfg.RollingWindowHours) * time.Hour,
		RecentEventsWindow: time.Duration(cfg.RecentEventsDays) * 24 * time.Hour,
		StaleDeviceAfter:   time.Duration(cfg.StaleDeviceHours * float64(time.Hour)),
	}
}

// StatusService runs the participant status aggregation engine. Every call
// recomputes from freshly fetched snapshots; the only non-deterministic
// input is "now", which is injected for tests.
type StatusService struct {
	feeds   feedSource
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     StatusServiceConfig
}

// NewStatusService constructs the service with protocol defaults.
func NewStatusService(feeds feedSource, metrics *MetricsService, logger *zap.Logger, cfg StatusServiceConfig) *StatusService {
	if cfg.TrialDuration <= 0 {
		cfg.TrialDuration = 30 * 24 * time.Hour
	}
	if cfg.FallbackLookback <= 0 {
		cfg.FallbackLookback = 30 * 24 * time.Hour
	}
	if cfg.RollingWindow <= 0 {
		cfg.RollingWindow = 36 * time.Hour
	}
	if cfg.RecentEventsWindow <= 0 {
		cfg.RecentEventsWindow = 7 * 24 * time.Hour
	}
	if cfg.StaleDeviceAfter <= 0 {
		cfg.StaleDeviceAfter = 10 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		feeds:   feeds,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// StatusForAllActive fetches the three feeds and computes one status record
// per active participant. Questionnaire and participant feed failures abort
// the refresh; an event feed failure degrades to zero counts with
// EventsAvailable=false so the table still renders with an inline error on
// the events panel.
func (s *StatusService) StatusForAllActive(ctx context.Context) (*dto.StatusReport, error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveRefresh(time.Since(started))
	}()

	grid, err := s.fetchGrid(ctx)
	if err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	participants, err := s.feeds.Participants(ctx)
	s.metrics.ObserveUpstreamFetch("participants", time.Since(fetchStart), err)
	if err != nil {
		return nil, err
	}

	eventsAvailable := true
	fetchStart = time.Now()
	events, err := s.feeds.Events(ctx)
	s.metrics.ObserveUpstreamFetch("events", time.Since(fetchStart), err)
	if err != nil {
		s.logger.Warn("event feed unavailable, rendering partial table", zap.Error(err))
		eventsAvailable = false
		events = nil
	}

	now := timeutil.In(s.now())
	statuses := make([]models.ParticipantStatus, 0)
	for _, participant := range participants {
		if !participant.IsActive {
			continue
		}

		answers, err := s.feeds.Answers(ctx, participant.PatientID)
		if err != nil {
			// No answer data degrades to worst-case percentages, never a crash.
			s.logger.Warn("answer feed unavailable for participant",
				zap.String("patient_id", participant.PatientID), zap.Error(err))
			answers = nil
		}

		statuses = append(statuses, s.statusFor(participant, grid, answers, events, now))
	}

	return &dto.StatusReport{
		GeneratedAt:     now,
		Statuses:        statuses,
		EventsAvailable: eventsAvailable,
	}, nil
}

// statusFor computes one participant's status record. Pure given its inputs
// and the supplied "now".
func (s *StatusService) statusFor(
	participant models.Participant,
	grid *schedule.Grid,
	answers []models.AnswerRecord,
	events []models.EventRecord,
	now time.Time,
) models.ParticipantStatus {
	windowStart, windowEnd := s.trialWindow(participant, now)

	// The rolling lookback is clamped so it never precedes the trial window,
	// preventing false positives for brand-new participants.
	lookback := s.cfg.RollingWindow
	if sinceStart := now.Sub(windowStart); sinceStart < lookback {
		lookback = sinceStart
	}
	if lookback < 0 {
		lookback = 0
	}
	rollingStart := now.Add(-lookback)

	status := models.ParticipantStatus{
		PatientID:                participant.PatientID,
		Nickname:                 participant.Nickname,
		Wearing:                  participant.WearingStatus,
		NonResponseShortPct:      compliance.RollingNonResponse(grid, answers, rollingStart, now),
		NonResponseCumulativePct: compliance.CumulativeNonResponse(grid, answers, windowStart, windowEnd),
		EventsRecent: compliance.CountEvents(events, participant.PatientID,
			&compliance.Window{Start: now.Add(-s.cfg.RecentEventsWindow), End: now}),
		EventsTotal: compliance.CountEvents(events, participant.PatientID, nil),
	}

	if participant.EmpaticaLastUpdate != nil {
		since := now.Sub(timeutil.In(*participant.EmpaticaLastUpdate))
		hours := since.Hours()
		status.HoursSinceDeviceUpdate = &hours
		status.DeviceStale = since >= s.cfg.StaleDeviceAfter
	}

	return status
}

// trialWindow resolves the cumulative window for a participant: anchored at
// the trial start (or the fallback lookback when no anchor was recorded) and
// capped at trial completion or "now", whichever comes first.
func (s *StatusService) trialWindow(participant models.Participant, now time.Time) (time.Time, time.Time) {
	var windowStart time.Time
	if participant.TrialStartingDate != nil {
		windowStart = timeutil.In(*participant.TrialStartingDate)
	} else {
		windowStart = now.Add(-s.cfg.FallbackLookback)
	}

	windowEnd := windowStart.Add(s.cfg.TrialDuration)
	if windowEnd.After(now) {
		windowEnd = now
	}
	return windowStart, windowEnd
}

// Timetable returns the weekly questionnaire grid for display.
func (s *StatusService) Timetable(ctx context.Context) (*dto.TimetableResponse, error) {
	grid, err := s.fetchGrid(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.TimetableResponse{Slots: make([]dto.TimetableRow, 0, len(models.TimeSlots))}
	for _, slot := range models.TimeSlots {
		row := dto.TimetableRow{Slot: string(slot), Days: make(map[string][]int, len(models.Weekdays))}
		for _, day := range models.Weekdays {
			row.Days[string(day)] = grid.Questions(day, slot)
		}
		resp.Slots = append(resp.Slots, row)
	}
	return resp, nil
}

// ComplianceWindow reconciles one participant's answers over an arbitrary
// operator-chosen window, e.g. "since last notification".
func (s *StatusService) ComplianceWindow(ctx context.Context, patientID string, start, end time.Time, mode string) (*dto.ComplianceWindowResponse, error) {
	grid, err := s.fetchGrid(ctx)
	if err != nil {
		return nil, err
	}

	answers, err := s.feeds.Answers(ctx, patientID)
	if err != nil {
		return nil, err
	}

	start, end = timeutil.In(start), timeutil.In(end)
	resp := &dto.ComplianceWindowResponse{
		PatientID: patientID,
		Start:     start,
		End:       end,
		Mode:      mode,
	}

	switch mode {
	case dto.ModeRolling:
		resp.NonResponsePct = compliance.RollingNonResponse(grid, answers, start, end)
	case dto.ModeCumulative:
		resp.NonResponsePct = compliance.CumulativeNonResponse(grid, answers, start, end)
		resp.ValidAnswers = compliance.CountValidAnswers(answers, start, end)
		resp.ScheduledInstances = grid.CountInstances(start, end)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "mode must be rolling or cumulative")
	}

	return resp, nil
}

func (s *StatusService) fetchGrid(ctx context.Context) (*schedule.Grid, error) {
	started := time.Now()
	items, err := s.feeds.Questionnaire(ctx)
	s.metrics.ObserveUpstreamFetch("questionnaire", time.Since(started), err)
	if err != nil {
		return nil, err
	}
	return schedule.BuildGrid(items)
}
