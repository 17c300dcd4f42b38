package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

func TestAssignmentRepositoryInsertIfAbsentWritesOneRowPerTimeslot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_assignments")).
		WithArgs(sqlmock.AnyArg(), "sec-1", "slot-1", "room-1", "teacher-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_assignments")).
		WithArgs(sqlmock.AnyArg(), "sec-1", "slot-2", "room-1", "teacher-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := models.Assignment{
		SectionID:   "sec-1",
		TimeslotIDs: []string{"slot-1", "slot-2"},
		RoomID:      "room-1",
		TeacherID:   "teacher-1",
		Day:         1,
	}
	require.NoError(t, repo.InsertIfAbsent(context.Background(), assignment))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_assignments")).
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 12))

	require.NoError(t, repo.DeleteByTerm(context.Background(), "term-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteBySections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_assignments WHERE section_id = ANY")).
		WithArgs(pq.Array([]string{"sec-1", "sec-2"})).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.DeleteBySections(context.Background(), []string{"sec-1", "sec-2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteBySectionsEmptyInputSkipsQuery(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	require.NoError(t, repo.DeleteBySections(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListViewByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	rows := sqlmock.NewRows([]string{
		"section_id", "section_number", "capacity", "course_code", "course_name",
		"teacher_name", "room_name", "day_of_week", "start_time", "end_time",
	}).
		AddRow("sec-1", 1, 30, "MATH-1", "Mathematics", "Ada", "R101", 1, "08:00", "09:00").
		AddRow("sec-1", 1, 30, "MATH-1", "Mathematics", "Ada", "R101", 1, "09:00", "10:00")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sa.section_id")).
		WithArgs("term-1").
		WillReturnRows(rows)

	got, err := repo.ListViewByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Ada", got[0].TeacherName)
	require.Equal(t, "09:00", got[1].StartTime)
	require.NoError(t, mock.ExpectationsWereMet())
}
