package dto

// GenerateScheduleRequest triggers a generation run for one term.
type GenerateScheduleRequest struct {
	TermID string `json:"termId" validate:"required"`
}

// GenerateStats carries run diagnostics alongside the outcome.
type GenerateStats struct {
	RepairAttempts int   `json:"repairAttempts"`
	Displacements  int   `json:"displacements"`
	DurationMillis int64 `json:"durationMillis"`
}

// GenerateScheduleResponse reports the outcome of a generation run.
type GenerateScheduleResponse struct {
	TermID                string        `json:"termId"`
	AssignedCount         int           `json:"assignedCount"`
	TotalSections         int           `json:"totalSections"`
	AssignedSectionIDs    []string      `json:"assignedSections"`
	UnscheduledSectionIDs []string      `json:"unscheduledSections"`
	Stats                 GenerateStats `json:"stats"`
}
