package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

// CourseRepository reads course catalog and demand signals.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListOffered returns courses eligible for offering this term. Courses with no
// rotation order are catalog-only and never scheduled.
func (r *CourseRepository) ListOffered(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, code, name, hours_per_week, credits, specialization, prerequisite_id, rotation_order
FROM courses WHERE rotation_order IS NOT NULL ORDER BY code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list offered courses: %w", err)
	}
	return courses, nil
}

// FindByID loads a single course.
func (r *CourseRepository) FindByID(ctx context.Context, courseID string) (*models.Course, error) {
	const query = `SELECT id, code, name, hours_per_week, credits, specialization, prerequisite_id, rotation_order
FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

// DemandByCourse counts students whose course history for the term marks the
// course as requested, planned or enrolled. An empty result is expected when
// no demand has been recorded yet.
func (r *CourseRepository) DemandByCourse(ctx context.Context, termID string) (map[string]int, error) {
	const query = `SELECT course_id, COUNT(*) AS cnt FROM student_course_history
WHERE term_id = $1 AND status IN ($2, $3, $4) GROUP BY course_id`
	rows := []struct {
		CourseID string `db:"course_id"`
		Count    int    `db:"cnt"`
	}{}
	err := r.db.SelectContext(ctx, &rows, query, termID,
		models.EnrollmentStatusRequested, models.EnrollmentStatusPlanned, models.EnrollmentStatusEnrolled)
	if err != nil {
		return nil, fmt.Errorf("count course demand: %w", err)
	}
	demand := make(map[string]int, len(rows))
	for _, row := range rows {
		demand[row.CourseID] = row.Count
	}
	return demand, nil
}
