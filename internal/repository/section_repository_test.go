package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mhs-edu/scheduler-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSectionRepositoryListWithCourseInfo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "course_id", "term_id", "section_number", "capacity", "hours_per_week", "preferred_room_type", "status",
		"course_hours", "course_specialization", "course_code", "course_name", "course_prerequisite_id",
	}).AddRow("sec-1", "math", "term-1", 1, 30, 0, nil, "unscheduled", 3, nil, "MATH-1", "Mathematics", nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.course_id")).
		WithArgs("term-1").
		WillReturnRows(rows)

	sections, err := repo.ListWithCourseInfo(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "sec-1", sections[0].ID)
	require.Equal(t, 3, sections[0].CourseHours)
	require.Equal(t, "MATH-1", sections[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCountByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	rows := sqlmock.NewRows([]string{"course_id", "cnt"}).
		AddRow("math", 2).
		AddRow("bio", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, COUNT(*)")).
		WithArgs("term-1").
		WillReturnRows(rows)

	counts, err := repo.CountByCourse(context.Background(), "term-1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"math": 2, "bio": 1}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreateAssignsIDAndStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sections")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	section := &models.Section{CourseID: "math", TermID: "term-1", Number: 1, Capacity: 30}
	require.NoError(t, repo.Create(context.Background(), section))
	require.NotEmpty(t, section.ID)
	require.Equal(t, models.SectionStatusUnscheduled, section.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositorySetStatusMissingSection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sections SET status")).
		WithArgs(string(models.SectionStatusScheduled), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), "missing", models.SectionStatusScheduled)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryResetStatusByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sections SET status")).
		WithArgs(string(models.SectionStatusUnscheduled), "term-1").
		WillReturnResult(sqlmock.NewResult(0, 7))

	require.NoError(t, repo.ResetStatusByTerm(context.Background(), "term-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
