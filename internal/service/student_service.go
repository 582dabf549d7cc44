package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	CountAbsences(ctx context.Context, studentID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type rosterSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindScheduleByID(ctx context.Context, id string) (*models.Schedule, error)
}

type profileResolver interface {
	Profile(ctx context.Context, claims *models.AuthClaims) (*models.Teacher, error)
}

// StudentService covers roster access for teachers and student management
// for administrators.
type StudentService struct {
	students  studentRepository
	subjects  rosterSubjectRepository
	profiles  profileResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students studentRepository, subjects rosterSubjectRepository, profiles profileResolver, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, subjects: subjects, profiles: profiles, validator: validate, logger: logger}
}

// resolveOwnedSubject loads a subject and enforces that the caller teaches it.
func (s *StudentService) resolveOwnedSubject(ctx context.Context, claims *models.AuthClaims, subjectID string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "materia no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}

	teacher, err := s.profiles.Profile(ctx, claims)
	if err != nil {
		return nil, err
	}
	if subject.TeacherID != teacher.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "la materia no pertenece al docente")
	}
	return subject, nil
}

// RosterBySchedule resolves a schedule slot to its course and returns the
// roster, restricted to the subject's teacher.
func (s *StudentService) RosterBySchedule(ctx context.Context, claims *models.AuthClaims, scheduleID string) ([]models.Student, error) {
	schedule, err := s.subjects.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "horario no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}
	return s.RosterBySubject(ctx, claims, schedule.SubjectID)
}

// RosterBySubject returns the course roster behind a subject, restricted to
// the subject's teacher.
func (s *StudentService) RosterBySubject(ctx context.Context, claims *models.AuthClaims, subjectID string) ([]models.Student, error) {
	subject, err := s.resolveOwnedSubject(ctx, claims, subjectID)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListByCourse(ctx, subject.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch roster")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// List returns every student, for the admin panel.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// StudentRequest is the admin payload for creating or editing a student.
type StudentRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	CourseID string `json:"course_id" validate:"required"`
}

// Create registers a student on a course.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de estudiante inválidos")
	}
	student := &models.Student{Name: req.Name, CourseID: req.CourseID}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update edits a student's name and course.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de estudiante inválidos")
	}

	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	student.Name = req.Name
	student.CourseID = req.CourseID
	if err := s.students.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student. Students referenced by absence entries are
// protected so history stays consistent.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.students.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	total, err := s.students.CountAbsences(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count absences")
	}
	if total > 0 {
		return appErrors.Clone(appErrors.ErrHasReferences, "el estudiante tiene registros de asistencia asociados")
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
