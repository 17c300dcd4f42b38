package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

// AssignmentRepository persists committed schedule assignments. One row is
// stored per occupied timeslot, matching the read-side joins.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// InsertIfAbsent persists every timeslot row of the session. Re-running with
// identical arguments is a no-op: the (section, timeslot, room, teacher)
// tuple carries a unique constraint and conflicts are ignored.
func (r *AssignmentRepository) InsertIfAbsent(ctx context.Context, assignment models.Assignment) error {
	const query = `INSERT INTO schedule_assignments (id, section_id, timeslot_id, room_id, teacher_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (section_id, timeslot_id, room_id, teacher_id) DO NOTHING`
	for _, timeslotID := range assignment.TimeslotIDs {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), assignment.SectionID, timeslotID, assignment.RoomID, assignment.TeacherID); err != nil {
			return fmt.Errorf("insert schedule assignment: %w", err)
		}
	}
	return nil
}

// DeleteByTerm removes every assignment row in the term. Runs before a
// fresh generation pass so stale placements never survive a rerun.
func (r *AssignmentRepository) DeleteByTerm(ctx context.Context, termID string) error {
	const query = `DELETE FROM schedule_assignments
WHERE section_id IN (SELECT id FROM sections WHERE term_id = $1)`
	if _, err := r.db.ExecContext(ctx, query, termID); err != nil {
		return fmt.Errorf("delete term assignments: %w", err)
	}
	return nil
}

// DeleteBySections removes all assignment rows owned by the given sections.
func (r *AssignmentRepository) DeleteBySections(ctx context.Context, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	const query = `DELETE FROM schedule_assignments WHERE section_id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(sectionIDs)); err != nil {
		return fmt.Errorf("delete schedule assignments: %w", err)
	}
	return nil
}

// ListViewByTerm returns joined display rows for every assignment in the term.
func (r *AssignmentRepository) ListViewByTerm(ctx context.Context, termID string) ([]models.AssignmentViewRow, error) {
	const query = `
SELECT sa.section_id, s.section_number, s.capacity,
       c.code AS course_code, c.name AS course_name,
       t.full_name AS teacher_name, r.name AS room_name,
       ts.day_of_week, ts.start_time, ts.end_time
FROM schedule_assignments sa
JOIN sections s ON s.id = sa.section_id
JOIN courses c ON c.id = s.course_id
JOIN teachers t ON t.id = sa.teacher_id
JOIN rooms r ON r.id = sa.room_id
JOIN timeslots ts ON ts.id = sa.timeslot_id
WHERE s.term_id = $1
ORDER BY sa.section_id ASC, ts.day_of_week ASC, ts.start_time ASC`
	var rows []models.AssignmentViewRow
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list assignment view rows: %w", err)
	}
	return rows, nil
}
