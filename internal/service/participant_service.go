package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

type participantWriter interface {
	CreateParticipant(ctx context.Context, payload map[string]interface{}) error
	UpdateParticipant(ctx context.Context, payload map[string]interface{}) error
}

// ParticipantService proxies staff registration and update forms to the
// upstream API. The upstream owns the participant records; this service only
// validates and translates.
type ParticipantService struct {
	upstream  participantWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParticipantService constructs the service.
func NewParticipantService(upstream participantWriter, validate *validator.Validate, logger *zap.Logger) *ParticipantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipantService{upstream: upstream, validator: validate, logger: logger}
}

// Register enrolls a new participant.
func (s *ParticipantService) Register(ctx context.Context, req dto.RegisterParticipantRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid participant payload")
	}

	payload := map[string]interface{}{
		"nickName": req.Nickname,
	}
	putIfSet(payload, "phone", req.Phone)
	putIfSet(payload, "empaticaId", req.EmpaticaID)
	putIfSet(payload, "firebaseId", req.FirebaseID)

	trialStart, err := combineTrialStart(req.TrialStartDate, req.TrialStartTime)
	if err != nil {
		return err
	}
	if trialStart != nil {
		payload["trialStartingDate"] = trialStart.Format(time.RFC3339)
	}

	if err := s.upstream.CreateParticipant(ctx, payload); err != nil {
		return err
	}
	s.logger.Info("participant registered", zap.String("nickname", req.Nickname))
	return nil
}

// Update patches an existing participant. Only provided fields are sent.
func (s *ParticipantService) Update(ctx context.Context, patientID string, req dto.UpdateParticipantRequest) error {
	if patientID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "patientId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid participant payload")
	}

	payload := map[string]interface{}{
		"patientId": patientID,
	}
	putIfSet(payload, "nickName", req.Nickname)
	putIfSet(payload, "phone", req.Phone)
	putIfSet(payload, "empaticaId", req.EmpaticaID)
	putIfSet(payload, "firebaseId", req.FirebaseID)
	if req.IsActive != nil {
		payload["isActive"] = *req.IsActive
	}

	trialStart, err := combineTrialStart(req.TrialStartDate, req.TrialStartTime)
	if err != nil {
		return err
	}
	if trialStart != nil {
		payload["trialStartingDate"] = trialStart.Format(time.RFC3339)
	}

	if err := s.upstream.UpdateParticipant(ctx, payload); err != nil {
		return err
	}
	s.logger.Info("participant updated", zap.String("patient_id", patientID))
	return nil
}

func putIfSet(payload map[string]interface{}, key, value string) {
	if value != "" {
		payload[key] = value
	}
}

// combineTrialStart joins the form's date and time fields into one instant in
// the reference timezone. Date without time anchors at midnight, matching how
// the study coordinators fill the form.
func combineTrialStart(date, clock string) (*time.Time, error) {
	if date == "" {
		if clock != "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "trialStartTime requires trialStartDate")
		}
		return nil, nil
	}
	if clock == "" {
		clock = "00:00"
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %s", date, clock), timeutil.Location())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trial start")
	}
	return &t, nil
}
