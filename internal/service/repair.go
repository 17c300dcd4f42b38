package service

import (
	"github.com/mhs-edu/scheduler-api/internal/models"
)

// repairEngine tries to place a session that first-fit could not, by
// displacing the already-placed assignments blocking a window and finding
// each a new home. Displacement chains are bounded by maxDepth. Every mutation goes
// through an undo journal; a failed attempt rolls back in reverse order,
// leaving the tracker and pending list value-identical to before the call.
type repairEngine struct {
	state    *runState
	maxDepth int

	journal       []undoOp
	moved         map[string]bool
	attempts      int
	displacements int
}

// undoOp records one reversible mutation. An eviction remembers the pending
// index so rollback reinserts the assignment where it was; a placement is
// always an append, so its rollback removes the last pending entry.
type undoOp struct {
	evicted    bool
	assignment models.Assignment
	index      int
}

func newRepairEngine(state *runState, maxDepth int) *repairEngine {
	return &repairEngine{
		state:    state,
		maxDepth: maxDepth,
		moved:    make(map[string]bool),
	}
}

// Repair attempts to place one session of sec through displacement. On
// success the new assignment is committed to the run state and the moved
// sections are recorded; on failure the run state is untouched.
func (r *repairEngine) Repair(sec *models.SectionDetail, length int) (models.Assignment, bool) {
	r.journal = r.journal[:0]

	a, ok := r.placeWithDisplacement(sec, length, 0)
	if !ok {
		r.rollbackTo(0)
		return models.Assignment{}, false
	}
	for _, op := range r.journal {
		if op.evicted {
			r.moved[op.assignment.SectionID] = true
		}
	}
	r.journal = r.journal[:0]
	return a, true
}

// MovedSections returns the ids of sections whose assignments were displaced
// by successful repairs, so callers can re-persist them.
func (r *repairEngine) MovedSections() []string {
	out := make([]string, 0, len(r.moved))
	for id := range r.moved {
		out = append(out, id)
	}
	return out
}

func (r *repairEngine) Attempts() int      { return r.attempts }
func (r *repairEngine) Displacements() int { return r.displacements }

func (r *repairEngine) placeWithDisplacement(sec *models.SectionDetail, length, depth int) (models.Assignment, bool) {
	if depth >= r.maxDepth {
		return models.Assignment{}, false
	}
	r.attempts++

	for _, day := range r.state.catalog.days {
		daySlots := r.state.catalog.slotsByDay[day]
		for start := range daySlots {
			window, ok := r.state.catalog.slotWindow(day, start, length)
			if !ok {
				break
			}
			indexes := r.blockerIndexes(sec, window)
			if len(indexes) == 0 {
				continue
			}
			mark := len(r.journal)

			// Evict every blocker of the window before testing it. A
			// window held by several small sessions frees only when all
			// of them move. Descending index order keeps the remaining
			// indexes valid as pending shrinks.
			evicted := make([]models.Assignment, 0, len(indexes))
			for i := len(indexes) - 1; i >= 0; i-- {
				evicted = append(evicted, r.state.pending[indexes[i]])
				r.evict(indexes[i])
			}
			a, placed := r.state.tryWindow(sec, window, day, nil)
			if !placed {
				r.rollbackTo(mark)
				continue
			}
			r.place(a)

			relocated := true
			for _, blocker := range evicted {
				if !r.relocate(blocker, depth) {
					relocated = false
					break
				}
			}
			if relocated {
				r.displacements += len(evicted)
				return a, true
			}
			r.rollbackTo(mark)
		}
	}
	return models.Assignment{}, false
}

// relocate finds a new spot for a displaced assignment, never its original
// (window, room). When no free spot exists it recurses one level deeper and
// displaces in turn.
func (r *repairEngine) relocate(displaced models.Assignment, depth int) bool {
	sec, ok := r.state.sections[displaced.SectionID]
	if !ok {
		return false
	}
	length := displaced.Length()

	for _, day := range r.state.catalog.days {
		daySlots := r.state.catalog.slotsByDay[day]
		for start := range daySlots {
			window, winOK := r.state.catalog.slotWindow(day, start, length)
			if !winOK {
				break
			}
			if a, placed := r.state.tryWindow(sec, window, day, &displaced); placed {
				r.place(a)
				return true
			}
		}
	}

	_, ok = r.placeWithDisplacement(sec, length, depth+1)
	return ok
}

// blockerIndexes returns the pending indexes of assignments that overlap the
// window and hold a room or teacher the section's pools could use.
func (r *repairEngine) blockerIndexes(sec *models.SectionDetail, window []string) []int {
	rooms := make(map[string]bool)
	for _, room := range r.state.catalog.roomPool(sec.PreferredRoomType) {
		rooms[room.ID] = true
	}
	teachers := make(map[string]bool)
	for _, teacher := range r.state.catalog.teacherPool(sec.CourseSpecialization) {
		teachers[teacher.ID] = true
	}

	var indexes []int
	for idx, a := range r.state.pending {
		if a.SectionID == sec.ID {
			continue
		}
		if !rooms[a.RoomID] && !teachers[a.TeacherID] {
			continue
		}
		for _, slotID := range window {
			if a.UsesTimeslot(slotID) {
				indexes = append(indexes, idx)
				break
			}
		}
	}
	return indexes
}

func (r *repairEngine) evict(index int) {
	a := r.state.pending[index]
	r.state.tracker.Release(a)
	r.state.pending = append(r.state.pending[:index], r.state.pending[index+1:]...)
	r.journal = append(r.journal, undoOp{evicted: true, assignment: a, index: index})
}

func (r *repairEngine) place(a models.Assignment) {
	r.state.commit(a)
	r.journal = append(r.journal, undoOp{assignment: a, index: len(r.state.pending) - 1})
}

// rollbackTo undoes journal entries past mark in reverse order. Reversing in
// order guarantees each recorded index is valid at the moment it is undone.
func (r *repairEngine) rollbackTo(mark int) {
	for i := len(r.journal) - 1; i >= mark; i-- {
		op := r.journal[i]
		if op.evicted {
			r.state.tracker.Commit(op.assignment)
			rest := append([]models.Assignment{op.assignment}, r.state.pending[op.index:]...)
			r.state.pending = append(r.state.pending[:op.index], rest...)
		} else {
			r.state.tracker.Release(op.assignment)
			r.state.pending = r.state.pending[:len(r.state.pending)-1]
		}
	}
	r.journal = r.journal[:mark]
}
