package service

import (
	"context"
	"fmt"

	"github.com/mhs-edu/scheduler-api/internal/models"
	"github.com/mhs-edu/scheduler-api/pkg/config"
)

type demandCourseRepo interface {
	ListOffered(ctx context.Context) ([]models.Course, error)
	DemandByCourse(ctx context.Context, termID string) (map[string]int, error)
}

type demandSectionRepo interface {
	CountByCourse(ctx context.Context, termID string) (map[string]int, error)
	Create(ctx context.Context, section *models.Section) error
}

// DemandEstimator opens enough sections per offered course to seat the
// term's recorded demand. Courses without any demand signal get the
// configured default headcount so a fresh term still produces a timetable.
type DemandEstimator struct {
	courses       demandCourseRepo
	sections      demandSectionRepo
	capacity      int
	defaultDemand int
}

// NewDemandEstimator wires demand estimation dependencies.
func NewDemandEstimator(courses demandCourseRepo, sections demandSectionRepo, cfg config.SchedulerConfig) *DemandEstimator {
	if cfg.SectionCapacity <= 0 {
		cfg.SectionCapacity = 10
	}
	if cfg.DefaultDemand <= 0 {
		cfg.DefaultDemand = 10
	}
	return &DemandEstimator{
		courses:       courses,
		sections:      sections,
		capacity:      cfg.SectionCapacity,
		defaultDemand: cfg.DefaultDemand,
	}
}

// EnsureSections tops up each offered course to ceil(headcount/capacity)
// sections, numbering new ones after the existing count. Existing sections
// are never removed, so rerunning after demand drops keeps prior sections.
// Returns the number of sections created.
func (e *DemandEstimator) EnsureSections(ctx context.Context, termID string) (int, error) {
	offered, err := e.courses.ListOffered(ctx)
	if err != nil {
		return 0, fmt.Errorf("list offered courses: %w", err)
	}
	demand, err := e.courses.DemandByCourse(ctx, termID)
	if err != nil {
		return 0, fmt.Errorf("read course demand: %w", err)
	}
	existing, err := e.sections.CountByCourse(ctx, termID)
	if err != nil {
		return 0, fmt.Errorf("count existing sections: %w", err)
	}

	created := 0
	for _, course := range offered {
		headcount := demand[course.ID]
		if headcount == 0 {
			headcount = e.defaultDemand
		}
		required := (headcount + e.capacity - 1) / e.capacity
		have := existing[course.ID]

		for number := have + 1; number <= required; number++ {
			section := &models.Section{
				CourseID:          course.ID,
				TermID:            termID,
				Number:            number,
				Capacity:          e.capacity,
				HoursPerWeek:      course.HoursPerWeek,
				PreferredRoomType: course.Specialization,
				Status:            models.SectionStatusUnscheduled,
			}
			if err := e.sections.Create(ctx, section); err != nil {
				return created, fmt.Errorf("create section %d for course %s: %w", number, course.Code, err)
			}
			created++
		}
	}
	return created, nil
}
