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

type statusService interface {
	StatusForAllActive(ctx context.Context) (*dto.StatusReport, error)
	Timetable(ctx context.Context) (*dto.TimetableResponse, error)
	ComplianceWindow(ctx context.Context, patientID string, start, end time.Time, mode string) (*dto.ComplianceWindowResponse, error)
}

// StatusHandler wires the status engine to HTTP endpoints.
type StatusHandler struct {
	service statusService
}

// NewStatusHandler constructs the handler.
func NewStatusHandler(service statusService) *StatusHandler {
	return &StatusHandler{service: service}
}

// StatusTable returns the per-participant compliance table for the dashboard.
func (h *StatusHandler) StatusTable(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	report, err := h.service.StatusForAllActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, report, meta)
}

// Timetable returns the weekly questionnaire grid.
func (h *StatusHandler) Timetable(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	timetable, err := h.service.Timetable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable)
}

// Compliance reconciles one participant's answers over an operator-chosen
// window, e.g. since the last notification was sent.
func (h *StatusHandler) Compliance(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	patientID := strings.TrimSpace(c.Param("patientId"))
	if patientID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "patientId is required"))
		return
	}

	start, err := parseWindowBound(c.Query("start"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start, expected RFC3339"))
		return
	}
	end, err := parseWindowBound(c.Query("end"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end, expected RFC3339"))
		return
	}

	mode := strings.TrimSpace(c.DefaultQuery("mode", dto.ModeRolling))

	result, err := h.service.ComplianceWindow(c.Request.Context(), patientID, start, end, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func parseWindowBound(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(raw))
}
