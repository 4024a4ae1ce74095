package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/traumalab/trial-monitor-api/internal/dto"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
	"github.com/traumalab/trial-monitor-api/pkg/response"
)

type participantService interface {
	Register(ctx context.Context, req dto.RegisterParticipantRequest) error
	Update(ctx context.Context, patientID string, req dto.UpdateParticipantRequest) error
}

// ParticipantHandler exposes staff registration and update forms.
type ParticipantHandler struct {
	service participantService
}

// NewParticipantHandler constructs the handler.
func NewParticipantHandler(service participantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

// Register enrolls a new participant.
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req dto.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid participant payload"))
		return
	}

	if err := h.service.Register(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"status": "registered"})
}

// Update patches an existing participant.
func (h *ParticipantHandler) Update(c *gin.Context) {
	patientID := strings.TrimSpace(c.Param("patientId"))

	var req dto.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid participant payload"))
		return
	}

	if err := h.service.Update(c.Request.Context(), patientID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}
