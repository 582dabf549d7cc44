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

func TestStudentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "course_id", "phone", "email", "guardian_name", "guardian_phone", "address", "has_student_insurance", "blood_type", "created_at", "updated_at"}).
		AddRow("st1", "Carlos Pérez", "c1", nil, nil, nil, nil, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, course_id, .* FROM students WHERE course_id = \\$1 ORDER BY name ASC").
		WithArgs("c1").
		WillReturnRows(rows)

	students, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Carlos Pérez", students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByNameAndCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE LOWER(name) = LOWER($1) AND course_id = $2 LIMIT 1")).
		WithArgs("Carlos Pérez", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByNameAndCourse(context.Background(), "Carlos Pérez", "c1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE LOWER(name) = LOWER($1) AND course_id = $2 LIMIT 1")).
		WithArgs("Laura Díaz", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByNameAndCourse(context.Background(), "Laura Díaz", "c1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountAbsences(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM absent_students WHERE student_id = $1")).
		WithArgs("st1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountAbsences(context.Background(), "st1")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateFillsOptionalColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	phone := "3001234567"
	student := &models.Student{Name: "Carlos Pérez", CourseID: "c1", Phone: &phone}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
