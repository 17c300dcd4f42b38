package models

// Assignment is one committed session: a section occupying a room with a
// teacher for one or two contiguous timeslots on a single day.
type Assignment struct {
	SectionID   string   `json:"section_id"`
	TimeslotIDs []string `json:"timeslot_ids"`
	RoomID      string   `json:"room_id"`
	TeacherID   string   `json:"teacher_id"`
	Day         int      `json:"day"`
}

// Length returns the session length in hours.
func (a Assignment) Length() int {
	return len(a.TimeslotIDs)
}

// UsesTimeslot reports whether the session covers the given timeslot.
func (a Assignment) UsesTimeslot(timeslotID string) bool {
	for _, id := range a.TimeslotIDs {
		if id == timeslotID {
			return true
		}
	}
	return false
}

// AssignmentViewRow is a joined read-model row for schedule listings.
type AssignmentViewRow struct {
	SectionID     string `db:"section_id" json:"section_id"`
	SectionNumber int    `db:"section_number" json:"section_number"`
	Capacity      int    `db:"capacity" json:"capacity"`
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseName    string `db:"course_name" json:"course_name"`
	TeacherName   string `db:"teacher_name" json:"teacher_name"`
	RoomName      string `db:"room_name" json:"room_name"`
	DayOfWeek     int    `db:"day_of_week" json:"day_of_week"`
	StartTime     string `db:"start_time" json:"start_time"`
	EndTime       string `db:"end_time" json:"end_time"`
}
