// Package upstream wraps the trial data API the dashboard consumes. All
// schema translation from the wire's camelCase JSON into domain models
// happens here, once, at the fetch boundary.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/models"
	"github.com/traumalab/trial-monitor-api/pkg/config"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

// Client talks to the upstream trial data API.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a client from upstream config. Fetches are best-effort:
// beyond the retry policy there is no recovery, a failed feed surfaces as
// FEED_UNAVAILABLE.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, logger: logger}
}

func feedError(feed string, err error) error {
	return appErrors.Wrap(err, appErrors.ErrFeedUnavailable.Code,
		appErrors.ErrFeedUnavailable.Status,
		fmt.Sprintf("%s feed unavailable", feed))
}

func (c *Client) get(ctx context.Context, feed, path string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		c.logger.Warn("upstream fetch failed", zap.String("feed", feed), zap.Error(err))
		return feedError(feed, err)
	}
	if resp.IsError() {
		c.logger.Warn("upstream fetch rejected",
			zap.String("feed", feed),
			zap.Int("status", resp.StatusCode()),
		)
		return feedError(feed, fmt.Errorf("upstream returned %d", resp.StatusCode()))
	}
	return nil
}

// Participants fetches the participant roster.
func (c *Client) Participants(ctx context.Context) ([]models.Participant, error) {
	var wire []wireParticipant
	if err := c.get(ctx, "participants", "/participants/", &wire); err != nil {
		return nil, err
	}

	participants := make([]models.Participant, 0, len(wire))
	for _, w := range wire {
		participants = append(participants, w.toModel(c.logger))
	}
	return participants, nil
}

// Questionnaire fetches the questionnaire definitions. An empty questionnaire
// is indistinguishable from a broken feed for the status engine, so it is
// reported as unavailable too.
func (c *Client) Questionnaire(ctx context.Context) ([]models.QuestionnaireItem, error) {
	var wire []wireQuestionnaireItem
	if err := c.get(ctx, "questionnaire", "/questionnaire/", &wire); err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		return nil, feedError("questionnaire", fmt.Errorf("empty questionnaire"))
	}

	items := make([]models.QuestionnaireItem, 0, len(wire))
	for _, w := range wire {
		item, err := w.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Answers fetches one participant's answer log.
func (c *Client) Answers(ctx context.Context, patientID string) ([]models.AnswerRecord, error) {
	var wire []wireAnswer
	if err := c.get(ctx, "answers", fmt.Sprintf("/questions/%s", patientID), &wire); err != nil {
		return nil, err
	}

	answers := make([]models.AnswerRecord, 0, len(wire))
	for _, w := range wire {
		record, ok := w.toModel(c.logger)
		if !ok {
			continue
		}
		answers = append(answers, record)
	}
	return answers, nil
}

// Events fetches the full behavioral event feed.
func (c *Client) Events(ctx context.Context) ([]models.EventRecord, error) {
	var wire []wireEvent
	if err := c.get(ctx, "events", "/events/", &wire); err != nil {
		return nil, err
	}

	events := make([]models.EventRecord, 0, len(wire))
	for _, w := range wire {
		record, ok := w.toModel(c.logger)
		if !ok {
			continue
		}
		events = append(events, record)
	}
	return events, nil
}

// CreateParticipant registers a new participant with the upstream API.
func (c *Client) CreateParticipant(ctx context.Context, payload map[string]interface{}) error {
	return c.post(ctx, "/participants/", payload, http.StatusCreated)
}

// UpdateParticipant patches participant fields upstream. The upstream API
// keys the patch on the patientId field inside the payload.
func (c *Client) UpdateParticipant(ctx context.Context, payload map[string]interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Patch("/participants/")
	if err != nil {
		return feedError("participants", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "participant not found")
	}
	if resp.IsError() {
		return feedError("participants", fmt.Errorf("upstream returned %d", resp.StatusCode()))
	}
	return nil
}

// CreateEvent posts a staff-logged behavioral event.
func (c *Client) CreateEvent(ctx context.Context, payload map[string]interface{}) error {
	return c.post(ctx, "/events/", payload, http.StatusCreated)
}

// PushNotification asks the upstream API to deliver a mobile push. Delivery
// mechanics stay upstream; this call only hands over the message.
func (c *Client) PushNotification(ctx context.Context, firebaseID, title, body string) error {
	payload := map[string]interface{}{
		"firebaseId": firebaseID,
		"title":      title,
		"body":       body,
	}
	return c.post(ctx, "/notifications/", payload, http.StatusOK)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, wantStatus int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(path)
	if err != nil {
		return feedError(path, err)
	}
	if resp.StatusCode() != wantStatus && resp.IsError() {
		return feedError(path, fmt.Errorf("upstream returned %d", resp.StatusCode()))
	}
	return nil
}
