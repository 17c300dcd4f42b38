package service

import (
	"github.com/mhs-edu/scheduler-api/internal/models"
)

// occupancyTracker records which rooms and teachers are committed per
// timeslot, plus cumulative teacher hours per day. Commit and Release are
// exact inverses, including removal of emptied inner maps, so a released
// tracker compares deep-equal to its pre-commit state. The repair engine's
// rollback discipline depends on that symmetry.
type occupancyTracker struct {
	roomBusy     map[string]map[string]bool
	teacherBusy  map[string]map[string]bool
	teacherHours map[string]map[int]int
}

func newOccupancyTracker() *occupancyTracker {
	return &occupancyTracker{
		roomBusy:     make(map[string]map[string]bool),
		teacherBusy:  make(map[string]map[string]bool),
		teacherHours: make(map[string]map[int]int),
	}
}

// RoomFree reports whether the room is unoccupied for every given timeslot.
func (t *occupancyTracker) RoomFree(timeslotIDs []string, roomID string) bool {
	for _, slotID := range timeslotIDs {
		if t.roomBusy[slotID][roomID] {
			return false
		}
	}
	return true
}

// TeacherFree reports whether the teacher is unoccupied for every given timeslot.
func (t *occupancyTracker) TeacherFree(timeslotIDs []string, teacherID string) bool {
	for _, slotID := range timeslotIDs {
		if t.teacherBusy[slotID][teacherID] {
			return false
		}
	}
	return true
}

// TeacherDayHours returns the teacher's cumulative assigned hours for a day.
func (t *occupancyTracker) TeacherDayHours(teacherID string, day int) int {
	return t.teacherHours[teacherID][day]
}

// Commit marks the assignment's room and teacher occupied for its timeslots
// and adds the session length to the teacher's daily hours. Callers must not
// commit the same assignment twice without releasing it in between.
func (t *occupancyTracker) Commit(a models.Assignment) {
	for _, slotID := range a.TimeslotIDs {
		if t.roomBusy[slotID] == nil {
			t.roomBusy[slotID] = make(map[string]bool)
		}
		t.roomBusy[slotID][a.RoomID] = true

		if t.teacherBusy[slotID] == nil {
			t.teacherBusy[slotID] = make(map[string]bool)
		}
		t.teacherBusy[slotID][a.TeacherID] = true
	}

	if t.teacherHours[a.TeacherID] == nil {
		t.teacherHours[a.TeacherID] = make(map[int]int)
	}
	t.teacherHours[a.TeacherID][a.Day] += a.Length()
}

// Release fully reverses the matching Commit.
func (t *occupancyTracker) Release(a models.Assignment) {
	for _, slotID := range a.TimeslotIDs {
		if rooms := t.roomBusy[slotID]; rooms != nil {
			delete(rooms, a.RoomID)
			if len(rooms) == 0 {
				delete(t.roomBusy, slotID)
			}
		}
		if teachers := t.teacherBusy[slotID]; teachers != nil {
			delete(teachers, a.TeacherID)
			if len(teachers) == 0 {
				delete(t.teacherBusy, slotID)
			}
		}
	}

	if hours := t.teacherHours[a.TeacherID]; hours != nil {
		hours[a.Day] -= a.Length()
		if hours[a.Day] <= 0 {
			delete(hours, a.Day)
		}
		if len(hours) == 0 {
			delete(t.teacherHours, a.TeacherID)
		}
	}
}
