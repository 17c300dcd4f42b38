package service

import (
	"sort"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

// runState carries everything a single generation pass mutates: the resource
// snapshot, live occupancy, the pending assignments awaiting persistence, and
// the sections being placed. The repair engine shares this state and must
// leave it value-identical when a repair attempt fails.
type runState struct {
	catalog  *resourceCatalog
	tracker  *occupancyTracker
	pending  []models.Assignment
	sections map[string]*models.SectionDetail
	dailyCap int
}

func newRunState(catalog *resourceCatalog, sections []models.SectionDetail, dailyCap int) *runState {
	state := &runState{
		catalog:  catalog,
		tracker:  newOccupancyTracker(),
		sections: make(map[string]*models.SectionDetail, len(sections)),
		dailyCap: dailyCap,
	}
	for i := range sections {
		state.sections[sections[i].ID] = &sections[i]
	}
	return state
}

// commit records an assignment in the tracker and appends it to pending.
func (s *runState) commit(a models.Assignment) {
	s.tracker.Commit(a)
	s.pending = append(s.pending, a)
}

// releaseSection removes every pending assignment of one section and frees
// its occupancy. Used when a later session of the same section cannot be
// placed and the earlier ones must not survive.
func (s *runState) releaseSection(sectionID string) {
	kept := s.pending[:0]
	for _, a := range s.pending {
		if a.SectionID == sectionID {
			s.tracker.Release(a)
			continue
		}
		kept = append(kept, a)
	}
	s.pending = kept
}

// assignmentsOf returns the pending assignments of one section.
func (s *runState) assignmentsOf(sectionID string) []models.Assignment {
	var out []models.Assignment
	for _, a := range s.pending {
		if a.SectionID == sectionID {
			out = append(out, a)
		}
	}
	return out
}

// sessionLengths splits weekly hours into session lengths: two-hour blocks
// with a trailing single hour when the total is odd.
func sessionLengths(hours int) []int {
	var lengths []int
	for hours >= 2 {
		lengths = append(lengths, 2)
		hours -= 2
	}
	if hours == 1 {
		lengths = append(lengths, 1)
	}
	return lengths
}

// difficulty ranks a section for placement order. Sections needing a
// specific room type compete for a scarcer pool, so they go first.
func difficulty(sec models.SectionDetail) int {
	score := sec.CourseHours
	if sec.PreferredRoomType != nil {
		score += 3
	}
	return score
}

// sortByDifficulty orders sections hardest-first. The sort is stable so
// equally difficult sections keep their catalog order between runs.
func sortByDifficulty(sections []models.SectionDetail) {
	sort.SliceStable(sections, func(i, j int) bool {
		return difficulty(sections[i]) > difficulty(sections[j])
	})
}

// placeSession commits the first free (day, slot window, room, teacher)
// combination for one session of a section. It scans days in catalog order,
// window starts within each day, then the section's room and teacher pools.
// The teacher daily-hour cap is enforced against hours already committed on
// the candidate day. Returns false when no combination fits.
func (s *runState) placeSession(sec *models.SectionDetail, length int) (models.Assignment, bool) {
	for _, day := range s.catalog.days {
		daySlots := s.catalog.slotsByDay[day]
		for start := range daySlots {
			window, ok := s.catalog.slotWindow(day, start, length)
			if !ok {
				break
			}
			if a, ok := s.tryWindow(sec, window, day, nil); ok {
				s.commit(a)
				return a, true
			}
		}
	}
	return models.Assignment{}, false
}

// tryWindow attempts to fill one slot window from the section's pools.
// During repair relocation, avoid names the assignment being displaced so
// its exact (window, room) spot is never reused for it.
func (s *runState) tryWindow(sec *models.SectionDetail, window []string, day int, avoid *models.Assignment) (models.Assignment, bool) {
	for _, room := range s.catalog.roomPool(sec.PreferredRoomType) {
		if room.Capacity < sec.Capacity {
			continue
		}
		if avoid != nil && room.ID == avoid.RoomID && windowKey(window) == windowKey(avoid.TimeslotIDs) {
			continue
		}
		if !s.tracker.RoomFree(window, room.ID) {
			continue
		}
		for _, teacher := range s.catalog.teacherPool(sec.CourseSpecialization) {
			if !s.tracker.TeacherFree(window, teacher.ID) {
				continue
			}
			if s.tracker.TeacherDayHours(teacher.ID, day)+len(window) > s.dailyCap {
				continue
			}
			return models.Assignment{
				SectionID:   sec.ID,
				TimeslotIDs: append([]string(nil), window...),
				RoomID:      room.ID,
				TeacherID:   teacher.ID,
				Day:         day,
			}, true
		}
	}
	return models.Assignment{}, false
}

func windowKey(window []string) string {
	key := ""
	for _, id := range window {
		key += id + "|"
	}
	return key
}
