package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

// EnrollmentRepository persists student enrollments and course history reads
// used by the planner.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CountBySection returns the number of active enrollments in a section.
func (r *EnrollmentRepository) CountBySection(ctx context.Context, sectionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_enrollments WHERE section_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sectionID, models.EnrollmentStatusEnrolled); err != nil {
		return 0, fmt.Errorf("count section enrollments: %w", err)
	}
	return count, nil
}

// CountByStudentAndTerm returns how many sections the student is enrolled in
// for the term.
func (r *EnrollmentRepository) CountByStudentAndTerm(ctx context.Context, studentID, termID string) (int, error) {
	const query = `SELECT COUNT(DISTINCT se.section_id)
FROM student_enrollments se
JOIN sections s ON s.id = se.section_id
WHERE se.student_id = $1 AND s.term_id = $2 AND se.status = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, termID, models.EnrollmentStatusEnrolled); err != nil {
		return 0, fmt.Errorf("count student enrollments: %w", err)
	}
	return count, nil
}

// IsEnrolled reports whether the student already holds an active enrollment.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, sectionID string) (bool, error) {
	const query = `SELECT 1 FROM student_enrollments WHERE student_id = $1 AND section_id = $2 AND status = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, sectionID, models.EnrollmentStatusEnrolled); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// OccupiedSlotTokens returns day/time tokens for every timeslot the student's
// active enrollments occupy this term.
func (r *EnrollmentRepository) OccupiedSlotTokens(ctx context.Context, studentID, termID string) ([]string, error) {
	const query = `
SELECT ts.day_of_week || ' ' || ts.start_time || '-' || ts.end_time AS tok
FROM student_enrollments se
JOIN sections s ON s.id = se.section_id
JOIN schedule_assignments sa ON sa.section_id = s.id
JOIN timeslots ts ON ts.id = sa.timeslot_id
WHERE se.student_id = $1 AND s.term_id = $2 AND se.status = $3`
	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, query, studentID, termID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, fmt.Errorf("list occupied slot tokens: %w", err)
	}
	return tokens, nil
}

// SectionSlotTokens returns day/time tokens for a section's assignments.
func (r *EnrollmentRepository) SectionSlotTokens(ctx context.Context, sectionID string) ([]string, error) {
	const query = `
SELECT ts.day_of_week || ' ' || ts.start_time || '-' || ts.end_time AS tok
FROM schedule_assignments sa
JOIN timeslots ts ON ts.id = sa.timeslot_id
WHERE sa.section_id = $1`
	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section slot tokens: %w", err)
	}
	return tokens, nil
}

// PassedCourseIDs lists courses the student has passed.
func (r *EnrollmentRepository) PassedCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_id FROM student_course_history WHERE student_id = $1 AND status = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, models.EnrollmentStatusPassed); err != nil {
		return nil, fmt.Errorf("list passed courses: %w", err)
	}
	return ids, nil
}

// HistoryRows returns every attempted course with its credit weight.
func (r *EnrollmentRepository) HistoryRows(ctx context.Context, studentID string) ([]models.CourseHistoryRow, error) {
	const query = `
SELECT sch.course_id, sch.status, c.credits
FROM student_course_history sch
JOIN courses c ON c.id = sch.course_id
WHERE sch.student_id = $1`
	var rows []models.CourseHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list course history: %w", err)
	}
	return rows, nil
}

// Create inserts an active enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}
	const query = `INSERT INTO student_enrollments (id, student_id, section_id, status)
VALUES (:id, :student_id, :section_id, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Drop marks an active enrollment dropped. Returns sql.ErrNoRows when the
// student holds no active enrollment for the section.
func (r *EnrollmentRepository) Drop(ctx context.Context, studentID, sectionID string) error {
	const query = `UPDATE student_enrollments SET status = $1
WHERE student_id = $2 AND section_id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, models.EnrollmentStatusDropped, studentID, sectionID, models.EnrollmentStatusEnrolled)
	if err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check dropped enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
