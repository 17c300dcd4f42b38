package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

func strPtr(s string) *string { return &s }

func testCatalog(days, slotsPerDay int, rooms []models.Room, teachers []models.Teacher) *resourceCatalog {
	var slots []models.Timeslot
	for d := 1; d <= days; d++ {
		for i := 0; i < slotsPerDay; i++ {
			slots = append(slots, models.Timeslot{
				ID:        fmt.Sprintf("d%d-s%d", d, i+1),
				DayOfWeek: d,
				StartTime: fmt.Sprintf("%02d:00", 8+i),
				EndTime:   fmt.Sprintf("%02d:00", 9+i),
			})
		}
	}
	return buildResourceCatalog(slots, rooms, teachers)
}

func testSection(id string, hours int, roomType *string) models.SectionDetail {
	return models.SectionDetail{
		Section: models.Section{
			ID:                id,
			CourseID:          "course-" + id,
			TermID:            "term-1",
			Number:            1,
			Capacity:          10,
			HoursPerWeek:      hours,
			PreferredRoomType: roomType,
			Status:            models.SectionStatusUnscheduled,
		},
		CourseHours: hours,
		CourseCode:  "C-" + id,
		CourseName:  "Course " + id,
	}
}

func TestSessionLengths(t *testing.T) {
	cases := []struct {
		hours int
		want  []int
	}{
		{0, nil},
		{1, []int{1}},
		{2, []int{2}},
		{3, []int{2, 1}},
		{4, []int{2, 2}},
		{5, []int{2, 2, 1}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sessionLengths(tc.hours), "hours=%d", tc.hours)
	}
}

func TestSortByDifficultyHardestFirstAndStable(t *testing.T) {
	sections := []models.SectionDetail{
		testSection("plain-a", 2, nil),
		testSection("lab", 1, strPtr("lab")),
		testSection("plain-b", 2, nil),
		testSection("heavy", 5, nil),
	}
	sortByDifficulty(sections)

	require.Equal(t, "heavy", sections[0].ID)
	require.Equal(t, "lab", sections[1].ID)
	// Equal difficulty keeps input order.
	require.Equal(t, "plain-a", sections[2].ID)
	require.Equal(t, "plain-b", sections[3].ID)
}

func TestPlaceSessionNeverDoubleBooks(t *testing.T) {
	catalog := testCatalog(1, 2,
		[]models.Room{{ID: "room-1", Name: "101", Capacity: 30}},
		[]models.Teacher{{ID: "teacher-1", FullName: "T One", Active: true}},
	)
	sections := []models.SectionDetail{testSection("a", 1, nil), testSection("b", 1, nil)}
	state := newRunState(catalog, sections, 4)

	first, ok := state.placeSession(state.sections["a"], 1)
	require.True(t, ok)
	second, ok := state.placeSession(state.sections["b"], 1)
	require.True(t, ok)

	assert.Equal(t, []string{"d1-s1"}, first.TimeslotIDs)
	assert.Equal(t, []string{"d1-s2"}, second.TimeslotIDs)
	assert.Len(t, state.pending, 2)
}

func TestPlaceSessionRespectsTeacherDailyCap(t *testing.T) {
	catalog := testCatalog(2, 6,
		[]models.Room{{ID: "room-1", Name: "101", Capacity: 30}},
		[]models.Teacher{{ID: "teacher-1", FullName: "T One", Active: true}},
	)
	sections := []models.SectionDetail{testSection("a", 6, nil)}
	state := newRunState(catalog, sections, 4)
	sec := state.sections["a"]

	var days []int
	for _, length := range sessionLengths(sec.HoursPerWeek) {
		a, ok := state.placeSession(sec, length)
		require.True(t, ok)
		days = append(days, a.Day)
	}

	// Three two-hour sessions: the cap of four daily hours pushes the
	// third session onto the second day.
	require.Equal(t, []int{1, 1, 2}, days)
	assert.Equal(t, 4, state.tracker.TeacherDayHours("teacher-1", 1))
	assert.Equal(t, 2, state.tracker.TeacherDayHours("teacher-1", 2))
}

func TestPlaceSessionTwoHourBlockStaysWithinDay(t *testing.T) {
	catalog := testCatalog(3, 1,
		[]models.Room{{ID: "room-1", Name: "101", Capacity: 30}},
		[]models.Teacher{{ID: "teacher-1", FullName: "T One", Active: true}},
	)
	sections := []models.SectionDetail{testSection("a", 2, nil)}
	state := newRunState(catalog, sections, 4)

	_, ok := state.placeSession(state.sections["a"], 2)
	assert.False(t, ok, "a two-hour block must not span day boundaries")
	assert.Empty(t, state.pending)
}

func TestPlaceSessionPrefersTypedRoomPool(t *testing.T) {
	catalog := testCatalog(1, 2,
		[]models.Room{
			{ID: "room-1", Name: "101", Capacity: 30},
			{ID: "lab-1", Name: "Lab", RoomType: strPtr("lab"), Capacity: 30},
		},
		[]models.Teacher{{ID: "teacher-1", FullName: "T One", Active: true}},
	)
	sections := []models.SectionDetail{testSection("a", 1, strPtr("lab"))}
	state := newRunState(catalog, sections, 4)

	a, ok := state.placeSession(state.sections["a"], 1)
	require.True(t, ok)
	assert.Equal(t, "lab-1", a.RoomID)
}

func TestReleaseSectionDropsAllItsSessions(t *testing.T) {
	catalog := testCatalog(1, 4,
		[]models.Room{{ID: "room-1", Name: "101", Capacity: 30}},
		[]models.Teacher{{ID: "teacher-1", FullName: "T One", Active: true}},
	)
	sections := []models.SectionDetail{testSection("a", 3, nil), testSection("b", 1, nil)}
	state := newRunState(catalog, sections, 4)

	for _, length := range sessionLengths(3) {
		_, ok := state.placeSession(state.sections["a"], length)
		require.True(t, ok)
	}
	_, ok := state.placeSession(state.sections["b"], 1)
	require.True(t, ok)

	state.releaseSection("a")

	require.Len(t, state.pending, 1)
	assert.Equal(t, "b", state.pending[0].SectionID)
	assert.Equal(t, 1, state.tracker.TeacherDayHours("teacher-1", 1))
}

func TestPlaceSessionSkipsUndersizedRooms(t *testing.T) {
	catalog := testCatalog(1, 2,
		[]models.Room{
			{ID: "small", Name: "Closet", Capacity: 5},
			{ID: "big", Name: "Aula", Capacity: 40},
		},
		[]models.Teacher{{ID: "teacher-1", FullName: "T One", Active: true}},
	)
	sections := []models.SectionDetail{testSection("a", 1, nil)}
	state := newRunState(catalog, sections, 4)

	a, ok := state.placeSession(state.sections["a"], 1)
	require.True(t, ok)
	assert.Equal(t, "big", a.RoomID)
}
