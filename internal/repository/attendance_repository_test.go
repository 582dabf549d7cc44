package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
)

func TestAttendanceRepositoryExistsForSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM attendance_records WHERE subject_id = $1 AND schedule_id = $2 AND attendance_date = $3 LIMIT 1")).
		WithArgs("s1", "sch1", date).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsForSlot(context.Background(), "s1", "sch1", date)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM attendance_records WHERE subject_id = $1 AND schedule_id = $2 AND attendance_date = $3 LIMIT 1")).
		WithArgs("s1", "sch2", date).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsForSlot(context.Background(), "s1", "sch2", date)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreateWithAbsencesCommitsOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO absent_students").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO absent_students").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record := &models.AttendanceRecord{
		SubjectID:  "s1",
		ScheduleID: "sch1",
		Date:       time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		TeacherID:  "t1",
	}
	absences, err := repo.CreateWithAbsences(context.Background(), record, []string{"st1", "st2"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	require.Len(t, absences, 2)
	assert.Equal(t, record.ID, absences[0].AttendanceRecordID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreateWithAbsencesRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO absent_students").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	record := &models.AttendanceRecord{SubjectID: "s1", ScheduleID: "sch1", TeacherID: "t1"}
	_, err := repo.CreateWithAbsences(context.Background(), record, []string{"st1"}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDeleteWithAbsences(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM absent_students WHERE attendance_record_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_records WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithAbsences(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryAbsenceRowsForSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"attendance_record_id", "student_id", "attendance_date", "hours_count"}).
		AddRow("r1", "st1", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), nil).
		AddRow("r2", "st1", time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), 2)
	mock.ExpectQuery("SELECT ab.attendance_record_id, ab.student_id, ar.attendance_date, ab.hours_count").
		WithArgs("s1", "s2").
		WillReturnRows(rows)

	result, err := repo.AbsenceRowsForSubjects(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "st1", result[0].StudentID)
	require.NotNil(t, result[1].HoursCount)
	assert.Equal(t, 2, *result[1].HoursCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryAbsenceRowsForSubjectsEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	result, err := repo.AbsenceRowsForSubjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}
