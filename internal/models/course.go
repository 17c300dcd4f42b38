package models

// Course describes a catalog course offered across terms.
type Course struct {
	ID             string  `db:"id" json:"id"`
	Code           string  `db:"code" json:"code"`
	Name           string  `db:"name" json:"name"`
	HoursPerWeek   int     `db:"hours_per_week" json:"hours_per_week"`
	Credits        int     `db:"credits" json:"credits"`
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
	PrerequisiteID *string `db:"prerequisite_id" json:"prerequisite_id,omitempty"`
	RotationOrder  *int    `db:"rotation_order" json:"rotation_order,omitempty"`
}
