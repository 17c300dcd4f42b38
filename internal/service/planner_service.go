package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/internal/models"
	"github.com/mhs-edu/scheduler-api/pkg/config"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
)

type plannerSectionRepo interface {
	ListWithCourseInfo(ctx context.Context, termID string) ([]models.SectionDetail, error)
	FindByID(ctx context.Context, sectionID string) (*models.Section, error)
}

type plannerCourseRepo interface {
	FindByID(ctx context.Context, courseID string) (*models.Course, error)
}

type plannerEnrollmentRepo interface {
	CountBySection(ctx context.Context, sectionID string) (int, error)
	CountByStudentAndTerm(ctx context.Context, studentID, termID string) (int, error)
	IsEnrolled(ctx context.Context, studentID, sectionID string) (bool, error)
	OccupiedSlotTokens(ctx context.Context, studentID, termID string) ([]string, error)
	SectionSlotTokens(ctx context.Context, sectionID string) ([]string, error)
	PassedCourseIDs(ctx context.Context, studentID string) ([]string, error)
	HistoryRows(ctx context.Context, studentID string) ([]models.CourseHistoryRow, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Drop(ctx context.Context, studentID, sectionID string) error
}

type plannerAssignmentReader interface {
	ListViewByTerm(ctx context.Context, termID string) ([]models.AssignmentViewRow, error)
}

// StudentPlannerService handles a student's view of the timetable: which
// sections they can still join, enrollment and drop, and credit progress.
type StudentPlannerService struct {
	sections    plannerSectionRepo
	courses     plannerCourseRepo
	enrollments plannerEnrollmentRepo
	assignments plannerAssignmentReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         config.PlannerConfig
}

// NewStudentPlannerService wires planner dependencies.
func NewStudentPlannerService(
	sections plannerSectionRepo,
	courses plannerCourseRepo,
	enrollments plannerEnrollmentRepo,
	assignments plannerAssignmentReader,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.PlannerConfig,
) *StudentPlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentPlannerService{
		sections:    sections,
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// AvailableSections lists the term's scheduled sections annotated with why
// the student can or cannot enroll in each.
func (s *StudentPlannerService) AvailableSections(ctx context.Context, studentID, termID string) ([]dto.AvailableSectionView, error) {
	details, err := s.sections.ListWithCourseInfo(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	rows, err := s.assignments.ListViewByTerm(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("load term schedule: %w", err)
	}
	occupied, err := s.occupiedSet(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	passed, err := s.passedSet(ctx, studentID)
	if err != nil {
		return nil, err
	}

	type meeting struct {
		schedule []string
		teacher  string
		room     string
	}
	meetings := make(map[string]*meeting)
	for _, row := range rows {
		m := meetings[row.SectionID]
		if m == nil {
			m = &meeting{teacher: row.TeacherName, room: row.RoomName}
			meetings[row.SectionID] = m
		}
		m.schedule = append(m.schedule, fmt.Sprintf("%s %s-%s", dayName(row.DayOfWeek), row.StartTime, row.EndTime))
	}

	views := []dto.AvailableSectionView{}
	for _, sec := range details {
		if sec.Status != models.SectionStatusScheduled {
			continue
		}
		enrolled, err := s.enrollments.CountBySection(ctx, sec.ID)
		if err != nil {
			return nil, fmt.Errorf("count section enrollments: %w", err)
		}
		tokens, err := s.enrollments.SectionSlotTokens(ctx, sec.ID)
		if err != nil {
			return nil, fmt.Errorf("load section slots: %w", err)
		}
		already, err := s.enrollments.IsEnrolled(ctx, studentID, sec.ID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}

		conflict := false
		for _, tok := range tokens {
			if occupied[tok] {
				conflict = true
				break
			}
		}
		prereqMet := sec.CoursePrerequisiteID == nil || passed[*sec.CoursePrerequisiteID]
		seatsLeft := sec.Capacity - enrolled
		if seatsLeft < 0 {
			seatsLeft = 0
		}

		view := dto.AvailableSectionView{
			SectionID:     sec.ID,
			CourseCode:    sec.CourseCode,
			CourseName:    sec.CourseName,
			SectionNumber: sec.Number,
			Capacity:      sec.Capacity,
			SeatsLeft:     seatsLeft,
			PrereqMet:     prereqMet,
			TimeConflict:  conflict,
			CanEnroll:     seatsLeft > 0 && prereqMet && !conflict && !already,
		}
		if m := meetings[sec.ID]; m != nil {
			view.Schedule = strings.Join(m.schedule, "; ")
			view.Teacher = m.teacher
			view.Room = m.room
		}
		views = append(views, view)
	}
	return views, nil
}

// Enroll registers the student into a section after re-checking every
// enrollment rule: seat availability, the per-term course load limit, the
// course prerequisite and timetable conflicts.
func (s *StudentPlannerService) Enroll(ctx context.Context, req dto.EnrollRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentId, sectionId and termId are required")
	}

	section, err := s.sections.FindByID(ctx, req.SectionID)
	if err != nil {
		return err
	}
	if section.Status != models.SectionStatusScheduled {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "section has no committed schedule")
	}

	already, err := s.enrollments.IsEnrolled(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if already {
		return appErrors.Clone(appErrors.ErrConflict, "already enrolled in this section")
	}

	load, err := s.enrollments.CountByStudentAndTerm(ctx, req.StudentID, req.TermID)
	if err != nil {
		return fmt.Errorf("count term enrollments: %w", err)
	}
	if load >= s.cfg.MaxCoursesPerTerm {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "course load limit reached for this term")
	}

	enrolled, err := s.enrollments.CountBySection(ctx, req.SectionID)
	if err != nil {
		return fmt.Errorf("count section enrollments: %w", err)
	}
	if enrolled >= section.Capacity {
		return appErrors.ErrSectionFull
	}

	course, err := s.courses.FindByID(ctx, section.CourseID)
	if err != nil {
		return err
	}
	if course.PrerequisiteID != nil {
		passed, err := s.passedSet(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if !passed[*course.PrerequisiteID] {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "course prerequisite not met")
		}
	}

	occupied, err := s.occupiedSet(ctx, req.StudentID, req.TermID)
	if err != nil {
		return err
	}
	tokens, err := s.enrollments.SectionSlotTokens(ctx, req.SectionID)
	if err != nil {
		return fmt.Errorf("load section slots: %w", err)
	}
	for _, tok := range tokens {
		if occupied[tok] {
			return appErrors.ErrTimeConflict
		}
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, SectionID: req.SectionID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	if err := s.cache.InvalidateTerm(ctx, req.TermID); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("term_id", req.TermID), zap.Error(err))
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", req.StudentID),
		zap.String("section_id", req.SectionID))
	return nil
}

// Drop releases the student's active enrollment in a section.
func (s *StudentPlannerService) Drop(ctx context.Context, req dto.DropRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentId and sectionId are required")
	}

	if err := s.enrollments.Drop(ctx, req.StudentID, req.SectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "active enrollment not found")
		}
		return fmt.Errorf("drop enrollment: %w", err)
	}

	if section, err := s.sections.FindByID(ctx, req.SectionID); err == nil {
		if err := s.cache.InvalidateTerm(ctx, section.TermID); err != nil {
			s.logger.Warn("schedule cache invalidation failed", zap.String("term_id", section.TermID), zap.Error(err))
		}
	}
	s.logger.Info("student dropped section",
		zap.String("student_id", req.StudentID),
		zap.String("section_id", req.SectionID))
	return nil
}

// Progress summarises credit progress from the student's course history.
// Years remaining are stretched by the student's pass ratio so repeated
// failures push the estimate out.
func (s *StudentPlannerService) Progress(ctx context.Context, studentID string) (*dto.ProgressView, error) {
	rows, err := s.enrollments.HistoryRows(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load course history: %w", err)
	}

	earned := 0
	attempted := 0
	passedCount := 0
	for _, row := range rows {
		switch row.Status {
		case models.EnrollmentStatusPassed:
			earned += row.Credits
			attempted++
			passedCount++
		case models.EnrollmentStatusFailed:
			attempted++
		}
	}

	passRatio := 1.0
	if attempted > 0 {
		passRatio = float64(passedCount) / float64(attempted)
	}
	remaining := s.cfg.RequiredCredits - earned
	if remaining < 0 {
		remaining = 0
	}

	perYear := s.cfg.ExpectedCreditsYear
	if passRatio > 0 {
		perYear = s.cfg.ExpectedCreditsYear * passRatio
	}
	years := 0.0
	if remaining > 0 && perYear > 0 {
		years = math.Ceil(float64(remaining)/perYear*10) / 10
	}

	return &dto.ProgressView{
		CreditsEarned:    earned,
		RequiredCredits:  s.cfg.RequiredCredits,
		RemainingCredits: remaining,
		PassRatio:        passRatio,
		EstimatedYears:   years,
	}, nil
}

func (s *StudentPlannerService) occupiedSet(ctx context.Context, studentID, termID string) (map[string]bool, error) {
	tokens, err := s.enrollments.OccupiedSlotTokens(ctx, studentID, termID)
	if err != nil {
		return nil, fmt.Errorf("load occupied slots: %w", err)
	}
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set, nil
}

func (s *StudentPlannerService) passedSet(ctx context.Context, studentID string) (map[string]bool, error) {
	ids, err := s.enrollments.PassedCourseIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load passed courses: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
