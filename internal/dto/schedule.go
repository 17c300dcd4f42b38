package dto

import "time"

// ExportArchiveView points at a stored timetable export.
type ExportArchiveView struct {
	Token     string    `json:"token"`
	Filename  string    `json:"filename"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SectionScheduleView groups a section's committed meetings for display.
type SectionScheduleView struct {
	SectionID     string   `json:"sectionId"`
	CourseCode    string   `json:"course"`
	CourseName    string   `json:"courseName"`
	SectionNumber int      `json:"section"`
	Teacher       string   `json:"teacher"`
	Room          string   `json:"room"`
	Capacity      int      `json:"capacity"`
	Enrolled      int      `json:"studentsEnrolled"`
	Meetings      []string `json:"schedule"`
}
