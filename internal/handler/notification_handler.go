package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
	"github.com/traumalab/trial-monitor-api/pkg/response"
)

type notificationService interface {
	Push(ctx context.Context, patientID string, req dto.PushNotificationRequest) error
	LastNotified(ctx context.Context, patientID string) (time.Time, bool, error)
}

// NotificationHandler exposes the push notification actions.
type NotificationHandler struct {
	service notificationService
	enabled bool
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService, enabled bool) *NotificationHandler {
	return &NotificationHandler{service: service, enabled: enabled}
}

// Push sends a mobile notification to one participant.
func (h *NotificationHandler) Push(c *gin.Context) {
	if !h.enabled {
		response.Error(c, appErrors.ErrDisabled)
		return
	}
	patientID := strings.TrimSpace(c.Param("patientId"))
	if patientID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "patientId is required"))
		return
	}

	var req dto.PushNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notification payload"))
		return
	}

	if err := h.service.Push(c.Request.Context(), patientID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "sent"})
}

// LastNotified returns when the participant was last pushed, so the UI can
// request a "since last notification" compliance window.
func (h *NotificationHandler) LastNotified(c *gin.Context) {
	if !h.enabled {
		response.Error(c, appErrors.ErrDisabled)
		return
	}
	patientID := strings.TrimSpace(c.Param("patientId"))
	if patientID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "patientId is required"))
		return
	}

	sentAt, found, err := h.service.LastNotified(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.JSON(c, http.StatusOK, gin.H{"lastNotified": nil})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"lastNotified": sentAt.Format(time.RFC3339)})
}
