package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

// NotificationRepository records when each participant was last pushed a
// mobile notification. The upstream API does not keep this, and the
// dashboard needs it for "since last notification" compliance windows.
type NotificationRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(client *redis.Client, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{client: client, logger: logger}
}

func lastPushKey(patientID string) string {
	return fmt.Sprintf("notify:last:%s", patientID)
}

// RecordPush stores the instant a push was sent to the participant.
func (r *NotificationRepository) RecordPush(ctx context.Context, patientID string, sentAt time.Time) error {
	if r.client == nil {
		return nil
	}
	key := lastPushKey(patientID)
	if err := r.client.Set(ctx, key, sentAt.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// LastPush returns the most recent push instant for the participant, or
// ErrCacheMiss when none was ever recorded.
func (r *NotificationRepository) LastPush(ctx context.Context, patientID string) (time.Time, error) {
	if r.client == nil {
		return time.Time{}, appErrors.ErrCacheMiss
	}
	key := lastPushKey(patientID)
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, appErrors.ErrCacheMiss
		}
		return time.Time{}, fmt.Errorf("redis get %s: %w", key, err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored push instant %s: %w", key, err)
	}
	return t, nil
}

// Close releases the underlying Redis connection if present.
func (r *NotificationRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
