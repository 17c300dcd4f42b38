package models

// Timeslot is one teaching period in the weekly grid. Slots never span the
// lunch break; the catalog simply has no slot covering it.
type Timeslot struct {
	ID        string `db:"id" json:"id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// Room is a teaching space available for the term.
type Room struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	RoomType *string `db:"room_type" json:"room_type,omitempty"`
	Capacity int     `db:"capacity" json:"capacity"`
}

// Teacher represents an instructor record.
type Teacher struct {
	ID             string  `db:"id" json:"id"`
	FullName       string  `db:"full_name" json:"full_name"`
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
	Active         bool    `db:"active" json:"active"`
}
