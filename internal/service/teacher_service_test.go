package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type teacherRepoStub struct {
	byID       map[string]*models.Teacher
	byUserID   map[string]*models.Teacher
	byEmail    map[string]*models.Teacher
	emailTaken bool
	created    []models.Teacher
	updated    []models.Teacher
	deleted    []string
}

func newTeacherRepoStub() *teacherRepoStub {
	return &teacherRepoStub{
		byID:     map[string]*models.Teacher{},
		byUserID: map[string]*models.Teacher{},
		byEmail:  map[string]*models.Teacher{},
	}
}

func (s *teacherRepoStub) List(ctx context.Context) ([]models.Teacher, error) {
	teachers := make([]models.Teacher, 0, len(s.byID))
	for _, teacher := range s.byID {
		teachers = append(teachers, *teacher)
	}
	return teachers, nil
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := s.byID[id]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if teacher, ok := s.byUserID[userID]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if teacher, ok := s.byEmail[email]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return s.emailTaken, nil
}

func (s *teacherRepoStub) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = "t-new"
	s.created = append(s.created, *teacher)
	return nil
}

func (s *teacherRepoStub) Update(ctx context.Context, teacher *models.Teacher) error {
	s.updated = append(s.updated, *teacher)
	return nil
}

func (s *teacherRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type teacherSubjectsStub struct {
	subjects []models.SubjectWithCourse
	count    int
	classes  []models.TodayClass
	weekday  int
}

func (s *teacherSubjectsStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.SubjectWithCourse, error) {
	return s.subjects, nil
}

func (s *teacherSubjectsStub) ListAll(ctx context.Context) ([]models.SubjectWithCourse, error) {
	return s.subjects, nil
}

func (s *teacherSubjectsStub) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	return s.count, nil
}

func (s *teacherSubjectsStub) TodayClasses(ctx context.Context, teacherID string, dayOfWeek int) ([]models.TodayClass, error) {
	s.weekday = dayOfWeek
	return s.classes, nil
}

func teacherFixture() (*TeacherService, *teacherRepoStub, *teacherSubjectsStub) {
	repo := newTeacherRepoStub()
	subjects := &teacherSubjectsStub{}
	return NewTeacherService(repo, subjects, nil, zap.NewNop()), repo, subjects
}

func TestProfileResolvesByUserID(t *testing.T) {
	svc, repo, _ := teacherFixture()
	repo.byUserID["u1"] = &models.Teacher{ID: "t1", Name: "Ana Gómez", UserID: "u1"}

	teacher, err := svc.Profile(context.Background(), claimsFor("u1"))
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.Empty(t, repo.created)
}

func TestProfileFallsBackToEmail(t *testing.T) {
	svc, repo, _ := teacherFixture()
	repo.byEmail["u1@example.com"] = &models.Teacher{ID: "t1", Name: "Ana Gómez", Email: "u1@example.com"}

	teacher, err := svc.Profile(context.Background(), claimsFor("u1"))
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.Empty(t, repo.created)
}

func TestProfileProvisionsOnFirstLogin(t *testing.T) {
	svc, repo, _ := teacherFixture()

	claims := &models.AuthClaims{UserID: "u1", Email: "ana.gomez@example.com"}
	teacher, err := svc.Profile(context.Background(), claims)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "u1", teacher.UserID)
	assert.Equal(t, "ana.gomez@example.com", teacher.Email)
	// Without a display name in the token, the email local part is used.
	assert.Equal(t, "ana.gomez", teacher.Name)
}

func TestTodayClassesMapsSundayToSeven(t *testing.T) {
	svc, repo, subjects := teacherFixture()
	repo.byUserID["u1"] = &models.Teacher{ID: "t1", UserID: "u1"}
	svc.now = func() time.Time { return time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC) } // a Sunday

	_, err := svc.TodayClasses(context.Background(), claimsFor("u1"))
	require.NoError(t, err)
	assert.Equal(t, 7, subjects.weekday)
}

func TestUpdateTeacherRejectsTakenEmail(t *testing.T) {
	svc, repo, _ := teacherFixture()
	repo.byID["t1"] = &models.Teacher{ID: "t1", Name: "Ana Gómez", Email: "ana@example.com"}
	repo.emailTaken = true

	_, err := svc.Update(context.Background(), "t1", UpdateTeacherRequest{Name: "Ana Gómez", Email: "otro@example.com"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Empty(t, repo.updated)
}

func TestDeleteTeacherGuardedByAssignedSubjects(t *testing.T) {
	svc, repo, subjects := teacherFixture()
	repo.byID["t1"] = &models.Teacher{ID: "t1", Name: "Ana Gómez"}
	subjects.count = 2

	err := svc.Delete(context.Background(), "t1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrHasReferences.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, repo.deleted)
}

func TestDeleteTeacherWithoutSubjects(t *testing.T) {
	svc, repo, _ := teacherFixture()
	repo.byID["t1"] = &models.Teacher{ID: "t1", Name: "Ana Gómez"}

	require.NoError(t, svc.Delete(context.Background(), "t1"))
	assert.Equal(t, []string{"t1"}, repo.deleted)
}
