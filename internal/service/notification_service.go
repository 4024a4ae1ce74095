package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/internal/timeutil"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

type notificationStore interface {
	RecordPush(ctx context.Context, patientID string, sentAt time.Time) error
	LastPush(ctx context.Context, patientID string) (time.Time, error)
}

type pushSender interface {
	Participants(ctx context.Context) ([]models.Participant, error)
	PushNotification(ctx context.Context, firebaseID, title, body string) error
}

// NotificationService triggers mobile pushes through the upstream API and
// remembers when each participant was last notified, so compliance can be
// checked "since last notification". Delivery itself stays upstream.
type NotificationService struct {
	upstream pushSender
	store    notificationStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService constructs the service.
func NewNotificationService(upstream pushSender, store notificationStore, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		upstream: upstream,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Push sends a notification to one participant and records the instant.
func (s *NotificationService) Push(ctx context.Context, patientID string, req dto.PushNotificationRequest) error {
	if req.Title == "" || req.Body == "" {
		return appErrors.Clone(appErrors.ErrValidation, "title and body are required")
	}

	participant, err := s.findParticipant(ctx, patientID)
	if err != nil {
		return err
	}
	if participant.FirebaseID == "" {
		return appErrors.Clone(appErrors.ErrConflict, "participant has no registered device")
	}

	if err := s.upstream.PushNotification(ctx, participant.FirebaseID, req.Title, req.Body); err != nil {
		return err
	}

	sentAt := timeutil.In(s.now())
	if err := s.store.RecordPush(ctx, patientID, sentAt); err != nil {
		// The push went out; losing the bookmark only widens the next
		// "since last notification" window.
		s.logger.Warn("failed to record push instant",
			zap.String("patient_id", patientID), zap.Error(err))
	}

	s.logger.Info("push notification sent", zap.String("patient_id", patientID))
	return nil
}

// LastNotified returns the most recent push instant for the participant.
// found=false means no push was ever recorded.
func (s *NotificationService) LastNotified(ctx context.Context, patientID string) (time.Time, bool, error) {
	t, err := s.store.LastPush(ctx, patientID)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return timeutil.In(t), true, nil
}

func (s *NotificationService) findParticipant(ctx context.Context, patientID string) (models.Participant, error) {
	participants, err := s.upstream.Participants(ctx)
	if err != nil {
		return models.Participant{}, err
	}
	for _, p := range participants {
		if p.PatientID == patientID {
			return p, nil
		}
	}
	return models.Participant{}, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
}
