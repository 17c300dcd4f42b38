package models

// EnrollmentStatus values recognised in course history and enrollments.
const (
	EnrollmentStatusRequested = "requested"
	EnrollmentStatusPlanned   = "planned"
	EnrollmentStatusEnrolled  = "enrolled"
	EnrollmentStatusDropped   = "dropped"
	EnrollmentStatusPassed    = "passed"
	EnrollmentStatusFailed    = "failed"
)

// Enrollment links a student to a section.
type Enrollment struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	SectionID string `db:"section_id" json:"section_id"`
	Status    string `db:"status" json:"status"`
}

// CourseHistoryRow is one attempted course with its credit weight.
type CourseHistoryRow struct {
	CourseID string `db:"course_id" json:"course_id"`
	Status   string `db:"status" json:"status"`
	Credits  int    `db:"credits" json:"credits"`
}
