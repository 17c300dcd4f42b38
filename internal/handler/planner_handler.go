package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/internal/service"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
	"github.com/mhs-edu/scheduler-api/pkg/response"
)

type studentPlanner interface {
	AvailableSections(ctx context.Context, studentID, termID string) ([]dto.AvailableSectionView, error)
	Enroll(ctx context.Context, req dto.EnrollRequest) error
	Drop(ctx context.Context, req dto.DropRequest) error
	Progress(ctx context.Context, studentID string) (*dto.ProgressView, error)
}

// PlannerHandler exposes the student planner endpoints.
type PlannerHandler struct {
	service studentPlanner
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.StudentPlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// AvailableSections lists sections the student could enroll in for a term.
func (h *PlannerHandler) AvailableSections(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId query parameter is required"))
		return
	}
	views, err := h.service.AvailableSections(c.Request.Context(), studentID, c.Param("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Enroll registers a student into a section.
func (h *PlannerHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enroll payload"))
		return
	}
	if err := h.service.Enroll(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"status": "enrolled"})
}

// Drop releases a student's active enrollment.
func (h *PlannerHandler) Drop(c *gin.Context) {
	var req dto.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid drop payload"))
		return
	}
	if err := h.service.Drop(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "dropped"}, nil)
}

// Progress summarises a student's credit progress.
func (h *PlannerHandler) Progress(c *gin.Context) {
	view, err := h.service.Progress(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
