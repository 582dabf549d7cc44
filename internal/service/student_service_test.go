package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type studentRepoStub struct {
	byID     map[string]*models.Student
	byCourse map[string][]models.Student
	absences map[string]int
	created  []models.Student
	updated  []models.Student
	deleted  []string
}

func newStudentRepoStub() *studentRepoStub {
	return &studentRepoStub{
		byID:     map[string]*models.Student{},
		byCourse: map[string][]models.Student{},
		absences: map[string]int{},
	}
}

func (s *studentRepoStub) List(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0, len(s.byID))
	for _, student := range s.byID {
		students = append(students, *student)
	}
	return students, nil
}

func (s *studentRepoStub) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	return s.byCourse[courseID], nil
}

func (s *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := s.byID[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	student.ID = "st-new"
	s.created = append(s.created, *student)
	return nil
}

func (s *studentRepoStub) Update(ctx context.Context, student *models.Student) error {
	s.updated = append(s.updated, *student)
	return nil
}

func (s *studentRepoStub) CountAbsences(ctx context.Context, studentID string) (int, error) {
	return s.absences[studentID], nil
}

func (s *studentRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func studentFixture(teacher *models.Teacher) (*StudentService, *studentRepoStub) {
	repo := newStudentRepoStub()
	subjects := subjectLookupStub{
		subjects:  map[string]*models.Subject{"s1": {ID: "s1", TeacherID: "t1", CourseID: "c1"}},
		schedules: map[string]*models.Schedule{"sch1": {ID: "sch1", SubjectID: "s1"}},
	}
	return NewStudentService(repo, subjects, profileStub{teacher: teacher}, nil, zap.NewNop()), repo
}

func TestRosterBySubjectReturnsCourseStudents(t *testing.T) {
	svc, repo := studentFixture(&models.Teacher{ID: "t1"})
	repo.byCourse["c1"] = rosterOf("c1", 3)

	students, err := svc.RosterBySubject(context.Background(), claimsFor("u1"), "s1")
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestRosterBySubjectForbiddenForForeignTeacher(t *testing.T) {
	svc, _ := studentFixture(&models.Teacher{ID: "t2"})

	_, err := svc.RosterBySubject(context.Background(), claimsFor("u2"), "s1")
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestRosterByScheduleResolvesSubject(t *testing.T) {
	svc, repo := studentFixture(&models.Teacher{ID: "t1"})
	repo.byCourse["c1"] = rosterOf("c1", 2)

	students, err := svc.RosterBySchedule(context.Background(), claimsFor("u1"), "sch1")
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestRosterByScheduleUnknownSlotIsNotFound(t *testing.T) {
	svc, _ := studentFixture(&models.Teacher{ID: "t1"})

	_, err := svc.RosterBySchedule(context.Background(), claimsFor("u1"), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCreateStudentValidatesPayload(t *testing.T) {
	svc, repo := studentFixture(&models.Teacher{ID: "t1"})

	_, err := svc.Create(context.Background(), StudentRequest{Name: "X", CourseID: "c1"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Empty(t, repo.created)
}

func TestDeleteStudentGuardedByAbsenceHistory(t *testing.T) {
	svc, repo := studentFixture(&models.Teacher{ID: "t1"})
	repo.byID["st1"] = &models.Student{ID: "st1", Name: "Carlos Pérez", CourseID: "c1"}
	repo.absences["st1"] = 4

	err := svc.Delete(context.Background(), "st1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrHasReferences.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, repo.deleted)
}

func TestDeleteStudentWithoutHistory(t *testing.T) {
	svc, repo := studentFixture(&models.Teacher{ID: "t1"})
	repo.byID["st1"] = &models.Student{ID: "st1", Name: "Carlos Pérez", CourseID: "c1"}

	require.NoError(t, svc.Delete(context.Background(), "st1"))
	assert.Equal(t, []string{"st1"}, repo.deleted)
}
