package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
	"github.com/traumalab/trial-monitor-api/pkg/response"
)

type eventService interface {
	LogEvent(ctx context.Context, req dto.LogEventRequest) error
}

// EventHandler exposes the staff event-logging form.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// Create logs a behavioral event on a participant's behalf.
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.LogEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	if err := h.service.LogEvent(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"status": "logged"})
}
