package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/internal/service"
	"github.com/mhs-edu/scheduler-api/pkg/response"
)

type scheduleViewer interface {
	TermSchedule(ctx context.Context, termID string) ([]dto.SectionScheduleView, error)
	ExportTermSchedule(ctx context.Context, termID, format string) ([]byte, string, string, error)
}

type exportArchiver interface {
	Archive(ctx context.Context, termID, format string) (*dto.ExportArchiveView, error)
	Resolve(token string) (filePath, filename, contentType string, err error)
}

// ScheduleHandler serves schedule read endpoints.
type ScheduleHandler struct {
	service scheduleViewer
	archive exportArchiver
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleViewService, archive *service.ExportArchiveService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, archive: archive}
}

// TermSchedule returns the committed timetable for a term.
func (h *ScheduleHandler) TermSchedule(c *gin.Context) {
	views, err := h.service.TermSchedule(c.Request.Context(), c.Param("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Export streams the term timetable as csv or pdf.
func (h *ScheduleHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, filename, contentType, err := h.service.ExportTermSchedule(c.Request.Context(), c.Param("termId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// Archive stores a rendered export and returns a signed download token.
func (h *ScheduleHandler) Archive(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	view, err := h.archive.Archive(c.Request.Context(), c.Param("termId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Download streams a previously archived export by its signed token.
func (h *ScheduleHandler) Download(c *gin.Context) {
	filePath, filename, contentType, err := h.archive.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Type", contentType)
	c.FileAttachment(filePath, filename)
}
