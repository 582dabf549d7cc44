package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
)

func TestSettingsRepositoryUpsertHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (subject, grade) DO UPDATE SET hours = EXCLUDED.hours")).
		WithArgs("Matemáticas", 6, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertHours(context.Background(), models.SubjectGradeHours{Subject: "Matemáticas", Grade: 6, Hours: 5})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryDeleteAllHoursReturnsCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subject_grade_hours")).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeleteAllHours(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositorySaveSnapshotCopiesLiveTable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM academic_settings ORDER BY created_at ASC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cfg1"))
	mock.ExpectExec("UPDATE academic_settings SET active_year").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_grade_hours").
		WithArgs("Matemáticas", 6, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The live table holds a row from an earlier bulk upsert that is not in
	// this save; the snapshot must copy it all the same.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject, grade, hours FROM subject_grade_hours ORDER BY subject ASC, grade ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "grade", "hours"}).
			AddRow("Ciencias", 7, 2).
			AddRow("Matemáticas", 6, 5))
	mock.ExpectExec("INSERT INTO subject_hours_profiles").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_hours_profile_entries").
		WithArgs(sqlmock.AnyArg(), "Ciencias", 7, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_hours_profile_entries").
		WithArgs(sqlmock.AnyArg(), "Matemáticas", 6, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	hours := []models.SubjectGradeHours{{Subject: "Matemáticas", Grade: 6, Hours: 5}}
	profile, err := repo.SaveSnapshot(context.Background(), 2026, 3, hours)
	require.NoError(t, err)
	assert.Equal(t, 2026, profile.Year)
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositorySaveSnapshotRollsBackOnEntryFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM academic_settings ORDER BY created_at ASC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cfg1"))
	mock.ExpectExec("UPDATE academic_settings SET active_year").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_grade_hours").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	hours := []models.SubjectGradeHours{{Subject: "Matemáticas", Grade: 6, Hours: 5}}
	_, err := repo.SaveSnapshot(context.Background(), 2026, 3, hours)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
