package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mhs-edu/scheduler-api/internal/dto"
	"github.com/mhs-edu/scheduler-api/internal/models"
	"github.com/mhs-edu/scheduler-api/pkg/config"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
)

type stubPlannerSections struct {
	details []models.SectionDetail
	byID    map[string]*models.Section
}

func (s *stubPlannerSections) ListWithCourseInfo(ctx context.Context, termID string) ([]models.SectionDetail, error) {
	return s.details, nil
}

func (s *stubPlannerSections) FindByID(ctx context.Context, sectionID string) (*models.Section, error) {
	if sec, ok := s.byID[sectionID]; ok {
		return sec, nil
	}
	return nil, appErrors.ErrNotFound
}

type stubPlannerCourses struct {
	byID map[string]*models.Course
}

func (s *stubPlannerCourses) FindByID(ctx context.Context, courseID string) (*models.Course, error) {
	if course, ok := s.byID[courseID]; ok {
		return course, nil
	}
	return nil, appErrors.ErrNotFound
}

type stubPlannerEnrollments struct {
	sectionCounts map[string]int
	termCount     int
	enrolledIn    map[string]bool
	occupied      []string
	sectionSlots  map[string][]string
	passed        []string
	history       []models.CourseHistoryRow
	created       []*models.Enrollment
	dropErr       error
	dropped       []string
}

func (s *stubPlannerEnrollments) CountBySection(ctx context.Context, sectionID string) (int, error) {
	return s.sectionCounts[sectionID], nil
}

func (s *stubPlannerEnrollments) CountByStudentAndTerm(ctx context.Context, studentID, termID string) (int, error) {
	return s.termCount, nil
}

func (s *stubPlannerEnrollments) IsEnrolled(ctx context.Context, studentID, sectionID string) (bool, error) {
	return s.enrolledIn[sectionID], nil
}

func (s *stubPlannerEnrollments) OccupiedSlotTokens(ctx context.Context, studentID, termID string) ([]string, error) {
	return s.occupied, nil
}

func (s *stubPlannerEnrollments) SectionSlotTokens(ctx context.Context, sectionID string) ([]string, error) {
	return s.sectionSlots[sectionID], nil
}

func (s *stubPlannerEnrollments) PassedCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	return s.passed, nil
}

func (s *stubPlannerEnrollments) HistoryRows(ctx context.Context, studentID string) ([]models.CourseHistoryRow, error) {
	return s.history, nil
}

func (s *stubPlannerEnrollments) Create(ctx context.Context, enrollment *models.Enrollment) error {
	s.created = append(s.created, enrollment)
	return nil
}

func (s *stubPlannerEnrollments) Drop(ctx context.Context, studentID, sectionID string) error {
	if s.dropErr != nil {
		return s.dropErr
	}
	s.dropped = append(s.dropped, sectionID)
	return nil
}

type stubPlannerAssignments struct {
	rows []models.AssignmentViewRow
}

func (s *stubPlannerAssignments) ListViewByTerm(ctx context.Context, termID string) ([]models.AssignmentViewRow, error) {
	return s.rows, nil
}

func plannerFixture(sections *stubPlannerSections, courses *stubPlannerCourses, enrollments *stubPlannerEnrollments) *StudentPlannerService {
	if sections == nil {
		sections = &stubPlannerSections{byID: map[string]*models.Section{}}
	}
	if courses == nil {
		courses = &stubPlannerCourses{byID: map[string]*models.Course{}}
	}
	if enrollments == nil {
		enrollments = &stubPlannerEnrollments{}
	}
	return NewStudentPlannerService(
		sections,
		courses,
		enrollments,
		&stubPlannerAssignments{},
		nil,
		nil,
		zap.NewNop(),
		config.PlannerConfig{MaxCoursesPerTerm: 5, RequiredCredits: 30, ExpectedCreditsYear: 14},
	)
}

func scheduledSection(id, courseID string, capacity int) *models.Section {
	return &models.Section{
		ID:       id,
		CourseID: courseID,
		TermID:   "term-1",
		Number:   1,
		Capacity: capacity,
		Status:   models.SectionStatusScheduled,
	}
}

func enrollReq(sectionID string) dto.EnrollRequest {
	return dto.EnrollRequest{StudentID: "student-1", SectionID: sectionID, TermID: "term-1"}
}

func TestEnrollRejectsFullSection(t *testing.T) {
	sections := &stubPlannerSections{byID: map[string]*models.Section{
		"sec-1": scheduledSection("sec-1", "math", 1),
	}}
	enrollments := &stubPlannerEnrollments{sectionCounts: map[string]int{"sec-1": 1}}

	err := plannerFixture(sections, nil, enrollments).Enroll(context.Background(), enrollReq("sec-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSectionFull.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsCourseLoadLimit(t *testing.T) {
	sections := &stubPlannerSections{byID: map[string]*models.Section{
		"sec-1": scheduledSection("sec-1", "math", 10),
	}}
	enrollments := &stubPlannerEnrollments{termCount: 5}

	err := plannerFixture(sections, nil, enrollments).Enroll(context.Background(), enrollReq("sec-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsMissingPrerequisite(t *testing.T) {
	sections := &stubPlannerSections{byID: map[string]*models.Section{
		"sec-1": scheduledSection("sec-1", "math2", 10),
	}}
	courses := &stubPlannerCourses{byID: map[string]*models.Course{
		"math2": {ID: "math2", Code: "MATH-2", PrerequisiteID: strPtr("math1")},
	}}
	enrollments := &stubPlannerEnrollments{passed: []string{"bio1"}}

	err := plannerFixture(sections, courses, enrollments).Enroll(context.Background(), enrollReq("sec-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsTimetableClash(t *testing.T) {
	sections := &stubPlannerSections{byID: map[string]*models.Section{
		"sec-1": scheduledSection("sec-1", "math", 10),
	}}
	courses := &stubPlannerCourses{byID: map[string]*models.Course{
		"math": {ID: "math", Code: "MATH-1"},
	}}
	enrollments := &stubPlannerEnrollments{
		occupied:     []string{"1 08:00-09:00"},
		sectionSlots: map[string][]string{"sec-1": {"1 08:00-09:00"}},
	}

	err := plannerFixture(sections, courses, enrollments).Enroll(context.Background(), enrollReq("sec-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTimeConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollSuccess(t *testing.T) {
	sections := &stubPlannerSections{byID: map[string]*models.Section{
		"sec-1": scheduledSection("sec-1", "math", 10),
	}}
	courses := &stubPlannerCourses{byID: map[string]*models.Course{
		"math": {ID: "math", Code: "MATH-1"},
	}}
	enrollments := &stubPlannerEnrollments{
		sectionSlots: map[string][]string{"sec-1": {"1 08:00-09:00"}},
	}

	err := plannerFixture(sections, courses, enrollments).Enroll(context.Background(), enrollReq("sec-1"))
	require.NoError(t, err)
	require.Len(t, enrollments.created, 1)
	assert.Equal(t, "student-1", enrollments.created[0].StudentID)
	assert.Equal(t, "sec-1", enrollments.created[0].SectionID)
}

func TestDropWithoutActiveEnrollment(t *testing.T) {
	enrollments := &stubPlannerEnrollments{dropErr: sql.ErrNoRows}

	err := plannerFixture(nil, nil, enrollments).Drop(context.Background(), dto.DropRequest{StudentID: "student-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgressStretchesEstimateByPassRatio(t *testing.T) {
	enrollments := &stubPlannerEnrollments{history: []models.CourseHistoryRow{
		{CourseID: "math1", Status: models.EnrollmentStatusPassed, Credits: 4},
		{CourseID: "bio1", Status: models.EnrollmentStatusPassed, Credits: 4},
		{CourseID: "chem1", Status: models.EnrollmentStatusPassed, Credits: 2},
		{CourseID: "phys1", Status: models.EnrollmentStatusFailed, Credits: 4},
	}}

	view, err := plannerFixture(nil, nil, enrollments).Progress(context.Background(), "student-1")
	require.NoError(t, err)

	assert.Equal(t, 10, view.CreditsEarned)
	assert.Equal(t, 30, view.RequiredCredits)
	assert.Equal(t, 20, view.RemainingCredits)
	assert.InDelta(t, 0.75, view.PassRatio, 1e-9)
	// 20 remaining at 14*0.75 credits a year, rounded up to one decimal.
	assert.InDelta(t, 2.0, view.EstimatedYears, 1e-9)
}

func TestProgressWithoutHistory(t *testing.T) {
	view, err := plannerFixture(nil, nil, &stubPlannerEnrollments{}).Progress(context.Background(), "student-1")
	require.NoError(t, err)

	assert.Equal(t, 0, view.CreditsEarned)
	assert.Equal(t, 30, view.RemainingCredits)
	assert.InDelta(t, 1.0, view.PassRatio, 1e-9)
}

func TestAvailableSectionsFlags(t *testing.T) {
	sections := &stubPlannerSections{
		details: []models.SectionDetail{
			{
				Section: models.Section{ID: "sec-open", CourseID: "math", TermID: "term-1", Number: 1, Capacity: 10, Status: models.SectionStatusScheduled},
				CourseCode: "MATH-1", CourseName: "Mathematics",
			},
			{
				Section: models.Section{ID: "sec-clash", CourseID: "bio", TermID: "term-1", Number: 1, Capacity: 10, Status: models.SectionStatusScheduled},
				CourseCode: "BIO-1", CourseName: "Biology",
			},
			{
				Section: models.Section{ID: "sec-pending", CourseID: "chem", TermID: "term-1", Number: 1, Capacity: 10, Status: models.SectionStatusUnscheduled},
				CourseCode: "CHEM-1", CourseName: "Chemistry",
			},
		},
		byID: map[string]*models.Section{},
	}
	enrollments := &stubPlannerEnrollments{
		occupied: []string{"1 08:00-09:00"},
		sectionSlots: map[string][]string{
			"sec-open":  {"2 08:00-09:00"},
			"sec-clash": {"1 08:00-09:00"},
		},
	}

	views, err := plannerFixture(sections, nil, enrollments).AvailableSections(context.Background(), "student-1", "term-1")
	require.NoError(t, err)

	// Unscheduled sections are hidden entirely.
	require.Len(t, views, 2)
	byID := map[string]dto.AvailableSectionView{}
	for _, v := range views {
		byID[v.SectionID] = v
	}
	assert.True(t, byID["sec-open"].CanEnroll)
	assert.False(t, byID["sec-clash"].CanEnroll)
	assert.True(t, byID["sec-clash"].TimeConflict)
	assert.Equal(t, 10, byID["sec-open"].SeatsLeft)
}
