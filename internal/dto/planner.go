package dto

// AvailableSectionView is one section a student could enroll in, with the
// flags the UI needs to explain why enrollment is blocked.
type AvailableSectionView struct {
	SectionID     string `json:"sectionId"`
	CourseCode    string `json:"courseCode"`
	CourseName    string `json:"courseName"`
	SectionNumber int    `json:"sectionNumber"`
	Schedule      string `json:"schedule"`
	Room          string `json:"room"`
	Teacher       string `json:"teacher"`
	Capacity      int    `json:"capacity"`
	SeatsLeft     int    `json:"seatsLeft"`
	PrereqMet     bool   `json:"prereqMet"`
	TimeConflict  bool   `json:"timeConflict"`
	CanEnroll     bool   `json:"canEnroll"`
}

// EnrollRequest asks to enroll a student into a section.
type EnrollRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	SectionID string `json:"sectionId" validate:"required"`
	TermID    string `json:"termId" validate:"required"`
}

// DropRequest asks to drop an active enrollment.
type DropRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	SectionID string `json:"sectionId" validate:"required"`
}

// ProgressView summarises a student's credit progress.
type ProgressView struct {
	CreditsEarned    int     `json:"creditsEarned"`
	RequiredCredits  int     `json:"requiredCredits"`
	RemainingCredits int     `json:"remainingCredits"`
	PassRatio        float64 `json:"passRatio"`
	EstimatedYears   float64 `json:"estimatedYears"`
}
