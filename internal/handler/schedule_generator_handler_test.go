package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
)

type scheduleGeneratorMock struct {
	captured dto.GenerateScheduleRequest
	err      error
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateScheduleResponse{
		TermID:        req.TermID,
		AssignedCount: 4,
		TotalSections: 4,
	}, nil
}

func TestScheduleGeneratorHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/generate", bytes.NewReader([]byte(`{"termId":"term-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "term-1", mockSvc.captured.TermID)

	var body struct {
		Data dto.GenerateScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 4, body.Data.AssignedCount)
}

func TestScheduleGeneratorHandlerMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/generate", bytes.NewReader([]byte(`{"termId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGeneratorHandlerUnknownTerm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{err: appErrors.Clone(appErrors.ErrNotFound, "term not found")}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/generate", bytes.NewReader([]byte(`{"termId":"ghost"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
