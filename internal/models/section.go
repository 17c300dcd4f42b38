package models

// SectionStatus tracks whether a section has a committed timetable.
type SectionStatus string

const (
	SectionStatusUnscheduled SectionStatus = "unscheduled"
	SectionStatusScheduled   SectionStatus = "scheduled"
)

// Section is one offered instance of a course within a term.
type Section struct {
	ID                string        `db:"id" json:"id"`
	CourseID          string        `db:"course_id" json:"course_id"`
	TermID            string        `db:"term_id" json:"term_id"`
	Number            int           `db:"section_number" json:"section_number"`
	Capacity          int           `db:"capacity" json:"capacity"`
	HoursPerWeek      int           `db:"hours_per_week" json:"hours_per_week"`
	PreferredRoomType *string       `db:"preferred_room_type" json:"preferred_room_type,omitempty"`
	Status            SectionStatus `db:"status" json:"status"`
}

// SectionDetail joins a section with the course fields the scheduler needs.
type SectionDetail struct {
	Section
	CourseHours          int     `db:"course_hours" json:"course_hours"`
	CourseSpecialization *string `db:"course_specialization" json:"course_specialization,omitempty"`
	CourseCode           string  `db:"course_code" json:"course_code"`
	CourseName           string  `db:"course_name" json:"course_name"`
	CoursePrerequisiteID *string `db:"course_prerequisite_id" json:"course_prerequisite_id,omitempty"`
}
