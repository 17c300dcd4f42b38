package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/internal/models"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
	"github.com/mhs-edu/scheduler-api/pkg/export"
)

type scheduleAssignmentReader interface {
	ListViewByTerm(ctx context.Context, termID string) ([]models.AssignmentViewRow, error)
}

type scheduleEnrollmentCounter interface {
	CountBySection(ctx context.Context, sectionID string) (int, error)
}

// ScheduleViewService serves read models of a term's committed timetable,
// cached per term, plus CSV and PDF exports of the same view.
type ScheduleViewService struct {
	assignments scheduleAssignmentReader
	enrollments scheduleEnrollmentCounter
	cache       *CacheService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewScheduleViewService wires schedule read dependencies.
func NewScheduleViewService(
	assignments scheduleAssignmentReader,
	enrollments scheduleEnrollmentCounter,
	cache *CacheService,
	logger *zap.Logger,
) *ScheduleViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleViewService{
		assignments: assignments,
		enrollments: enrollments,
		cache:       cache,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// TermSchedule returns the term's timetable grouped by section, with one
// meeting line per occupied timeslot.
func (s *ScheduleViewService) TermSchedule(ctx context.Context, termID string) ([]dto.SectionScheduleView, error) {
	cacheKey := fmt.Sprintf("schedule:%s:view", termID)
	var cached []dto.SectionScheduleView
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.assignments.ListViewByTerm(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("load term schedule: %w", err)
	}

	views := []dto.SectionScheduleView{}
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		meeting := fmt.Sprintf("%s %s-%s", dayName(row.DayOfWeek), row.StartTime, row.EndTime)
		if i, ok := index[row.SectionID]; ok {
			views[i].Meetings = append(views[i].Meetings, meeting)
			continue
		}
		enrolled, err := s.enrollments.CountBySection(ctx, row.SectionID)
		if err != nil {
			return nil, fmt.Errorf("count section enrollments: %w", err)
		}
		index[row.SectionID] = len(views)
		views = append(views, dto.SectionScheduleView{
			SectionID:     row.SectionID,
			CourseCode:    row.CourseCode,
			CourseName:    row.CourseName,
			SectionNumber: row.SectionNumber,
			Teacher:       row.TeacherName,
			Room:          row.RoomName,
			Capacity:      row.Capacity,
			Enrolled:      enrolled,
			Meetings:      []string{meeting},
		})
	}

	if err := s.cache.Set(ctx, cacheKey, views, 0); err != nil {
		s.logger.Warn("schedule view cache write failed", zap.String("term_id", termID), zap.Error(err))
	}
	return views, nil
}

// ExportTermSchedule renders the term timetable as csv or pdf. Returns the
// payload with its suggested filename and content type.
func (s *ScheduleViewService) ExportTermSchedule(ctx context.Context, termID, format string) ([]byte, string, string, error) {
	views, err := s.TermSchedule(ctx, termID)
	if err != nil {
		return nil, "", "", err
	}

	table := export.Timetable{
		Title:   fmt.Sprintf("Timetable %s", termID),
		Headers: []string{"Course", "Section", "Teacher", "Room", "Capacity", "Enrolled", "Meetings"},
	}
	for _, view := range views {
		meetings := ""
		for i, m := range view.Meetings {
			if i > 0 {
				meetings += "; "
			}
			meetings += m
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%s %s", view.CourseCode, view.CourseName),
			strconv.Itoa(view.SectionNumber),
			view.Teacher,
			view.Room,
			strconv.Itoa(view.Capacity),
			strconv.Itoa(view.Enrolled),
			meetings,
		})
	}

	switch format {
	case "csv":
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, "", "", fmt.Errorf("render csv: %w", err)
		}
		return payload, fmt.Sprintf("timetable-%s.csv", termID), "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(table)
		if err != nil {
			return nil, "", "", fmt.Errorf("render pdf: %w", err)
		}
		return payload, fmt.Sprintf("timetable-%s.pdf", termID), "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func dayName(day int) string {
	if day >= 1 && day < len(dayNames) {
		return dayNames[day]
	}
	return strconv.Itoa(day)
}
