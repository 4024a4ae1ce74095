package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

type eventWriter interface {
	CreateEvent(ctx context.Context, payload map[string]interface{}) error
}

// EventService records staff-logged behavioral events with the upstream API.
// The form captures Israel wall-clock date and time; the mobile backend
// stores event timestamps as naive UTC, so the conversion happens here.
type EventService struct {
	upstream  eventWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the service and registers the enum validations.
func NewEventService(upstream eventWriter, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := &EventService{upstream: upstream, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return containsString(models.EventTypes, fl.Field().String())
	})
	_ = svc.validator.RegisterValidation("activity", func(fl validator.FieldLevel) bool {
		return containsString(models.Activities, fl.Field().String())
	})
	return svc
}

// LogEvent validates and forwards a staff-entered event.
func (s *EventService) LogEvent(ctx context.Context, req dto.LogEventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	local, err := time.ParseInLocation("2006-01-02 15:04",
		fmt.Sprintf("%s %s", req.Date, req.Time), timeutil.Location())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event date or time")
	}

	payload := map[string]interface{}{
		"patientId": req.PatientID,
		"deviceId":  req.PatientID,
		"timestamp": timeutil.FormatEventTimestamp(local),
		"eventType": req.EventType,
		"activity":  req.Activity,
		"severity":  req.Severity,
		"location":  map[string]float64{"lat": req.Lat, "long": req.Long},
		"origin":    string(models.OriginAssistant),
	}

	if err := s.upstream.CreateEvent(ctx, payload); err != nil {
		return err
	}
	s.logger.Info("event logged",
		zap.String("patient_id", req.PatientID),
		zap.String("event_type", req.EventType),
		zap.Int("severity", req.Severity),
	)
	return nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
