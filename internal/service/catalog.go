package service

import (
	"github.com/mhs-edu/scheduler-api/internal/models"
)

// resourceCatalog is the read-only per-run snapshot of schedulable resources.
// Timeslots are grouped by day in daily order; rooms and teachers keep their
// catalog iteration order so placement search stays deterministic.
type resourceCatalog struct {
	days           []int
	slotsByDay     map[int][]models.Timeslot
	rooms          []models.Room
	roomsByType    map[string][]models.Room
	teachers       []models.Teacher
	teachersBySpec map[string][]models.Teacher
	dayBySlot      map[string]int
}

func buildResourceCatalog(slots []models.Timeslot, rooms []models.Room, teachers []models.Teacher) *resourceCatalog {
	catalog := &resourceCatalog{
		slotsByDay:     make(map[int][]models.Timeslot),
		rooms:          rooms,
		roomsByType:    make(map[string][]models.Room),
		teachers:       teachers,
		teachersBySpec: make(map[string][]models.Teacher),
		dayBySlot:      make(map[string]int, len(slots)),
	}

	for _, slot := range slots {
		if _, seen := catalog.slotsByDay[slot.DayOfWeek]; !seen {
			catalog.days = append(catalog.days, slot.DayOfWeek)
		}
		catalog.slotsByDay[slot.DayOfWeek] = append(catalog.slotsByDay[slot.DayOfWeek], slot)
		catalog.dayBySlot[slot.ID] = slot.DayOfWeek
	}

	for _, room := range rooms {
		if room.RoomType == nil {
			continue
		}
		catalog.roomsByType[*room.RoomType] = append(catalog.roomsByType[*room.RoomType], room)
	}

	for _, teacher := range teachers {
		if teacher.Specialization == nil {
			continue
		}
		catalog.teachersBySpec[*teacher.Specialization] = append(catalog.teachersBySpec[*teacher.Specialization], teacher)
	}

	return catalog
}

// roomPool returns rooms of the preferred type, or every room when the type
// is unset or has no members.
func (c *resourceCatalog) roomPool(preferredType *string) []models.Room {
	if preferredType != nil {
		if pool := c.roomsByType[*preferredType]; len(pool) > 0 {
			return pool
		}
	}
	return c.rooms
}

// teacherPool returns teachers of the specialization, or every teacher when
// the specialization is unset or has no members.
func (c *resourceCatalog) teacherPool(specialization *string) []models.Teacher {
	if specialization != nil {
		if pool := c.teachersBySpec[*specialization]; len(pool) > 0 {
			return pool
		}
	}
	return c.teachers
}

// dayOf returns the day a timeslot belongs to.
func (c *resourceCatalog) dayOf(timeslotID string) int {
	return c.dayBySlot[timeslotID]
}

// slotWindow returns the candidate timeslot ids for a session of the given
// length starting at index within the day, or false when a 2-slot session
// would run past the end of the day.
func (c *resourceCatalog) slotWindow(day, start, length int) ([]string, bool) {
	slots := c.slotsByDay[day]
	if start+length > len(slots) {
		return nil, false
	}
	window := make([]string, 0, length)
	for i := start; i < start+length; i++ {
		window = append(window, slots[i].ID)
	}
	return window, true
}
