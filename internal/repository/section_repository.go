package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

// SectionRepository persists course sections for a term.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListWithCourseInfo returns the term's sections joined with the course
// fields the assigner needs.
func (r *SectionRepository) ListWithCourseInfo(ctx context.Context, termID string) ([]models.SectionDetail, error) {
	const query = `
SELECT s.id, s.course_id, s.term_id, s.section_number, s.capacity, s.hours_per_week, s.preferred_room_type, s.status,
       c.hours_per_week AS course_hours, c.specialization AS course_specialization,
       c.code AS course_code, c.name AS course_name, c.prerequisite_id AS course_prerequisite_id
FROM sections s
JOIN courses c ON c.id = s.course_id
WHERE s.term_id = $1
ORDER BY s.course_id ASC, s.section_number ASC`
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, termID); err != nil {
		return nil, fmt.Errorf("list sections with course info: %w", err)
	}
	return sections, nil
}

// CountByCourse returns the number of existing sections per course for a term.
func (r *SectionRepository) CountByCourse(ctx context.Context, termID string) (map[string]int, error) {
	const query = `SELECT course_id, COUNT(*) AS cnt FROM sections WHERE term_id = $1 GROUP BY course_id`
	rows := []struct {
		CourseID string `db:"course_id"`
		Count    int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("count sections by course: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}
	return counts, nil
}

// Create inserts a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.Status == "" {
		section.Status = models.SectionStatusUnscheduled
	}
	const query = `INSERT INTO sections (id, course_id, term_id, section_number, capacity, hours_per_week, preferred_room_type, status)
VALUES (:id, :course_id, :term_id, :section_number, :capacity, :hours_per_week, :preferred_room_type, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// ResetStatusByTerm marks every section in the term unscheduled.
func (r *SectionRepository) ResetStatusByTerm(ctx context.Context, termID string) error {
	const query = `UPDATE sections SET status = $1 WHERE term_id = $2`
	if _, err := r.db.ExecContext(ctx, query, models.SectionStatusUnscheduled, termID); err != nil {
		return fmt.Errorf("reset section statuses: %w", err)
	}
	return nil
}

// SetStatus updates a single section's status.
func (r *SectionRepository) SetStatus(ctx context.Context, sectionID string, status models.SectionStatus) error {
	const query = `UPDATE sections SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, sectionID)
	if err != nil {
		return fmt.Errorf("set section status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated section rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID loads a single section.
func (r *SectionRepository) FindByID(ctx context.Context, sectionID string) (*models.Section, error) {
	const query = `SELECT id, course_id, term_id, section_number, capacity, hours_per_week, preferred_room_type, status
FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, sectionID); err != nil {
		return nil, err
	}
	return &section, nil
}
