package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherSubjectRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.SubjectWithCourse, error)
	ListAll(ctx context.Context) ([]models.SubjectWithCourse, error)
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
	TodayClasses(ctx context.Context, teacherID string, dayOfWeek int) ([]models.TodayClass, error)
}

// TeacherService covers the teacher profile, timetable and admin management
// flows.
type TeacherService struct {
	teachers  teacherRepository
	subjects  teacherSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(teachers teacherRepository, subjects teacherSubjectRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{teachers: teachers, subjects: subjects, validator: validate, logger: logger, now: time.Now}
}

// Profile resolves the caller's teacher row, provisioning one on first
// login. Lookup goes by auth user id first, then by email for rows created
// before the account was linked.
func (s *TeacherService) Profile(ctx context.Context, claims *models.AuthClaims) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByUserID(ctx, claims.UserID)
	if err == nil {
		return teacher, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
	}

	if claims.Email != "" {
		teacher, err = s.teachers.FindByEmail(ctx, claims.Email)
		if err == nil {
			return teacher, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
		}
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
		if at := strings.Index(name, "@"); at > 0 {
			name = name[:at]
		}
	}
	teacher = &models.Teacher{
		Name:   name,
		UserID: claims.UserID,
		Email:  claims.Email,
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision teacher")
	}
	s.logger.Info("provisioned teacher profile", zap.String("teacher_id", teacher.ID), zap.String("email", teacher.Email))
	return teacher, nil
}

// TodayClasses returns the caller's timetable slots for today's weekday,
// Monday=1 through Sunday=7.
func (s *TeacherService) TodayClasses(ctx context.Context, claims *models.AuthClaims) ([]models.TodayClass, error) {
	teacher, err := s.Profile(ctx, claims)
	if err != nil {
		return nil, err
	}

	weekday := int(s.now().Weekday())
	if weekday == 0 {
		weekday = 7
	}

	classes, err := s.subjects.TodayClasses(ctx, teacher.ID, weekday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch today classes")
	}
	if classes == nil {
		classes = []models.TodayClass{}
	}
	return classes, nil
}

// Subjects returns the caller's subjects decorated with course names.
func (s *TeacherService) Subjects(ctx context.Context, claims *models.AuthClaims) ([]models.SubjectWithCourse, error) {
	teacher, err := s.Profile(ctx, claims)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subjects")
	}
	if subjects == nil {
		subjects = []models.SubjectWithCourse{}
	}
	return subjects, nil
}

// AllSubjects returns every subject in the school with course names.
func (s *TeacherService) AllSubjects(ctx context.Context) ([]models.SubjectWithCourse, error) {
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subjects")
	}
	if subjects == nil {
		subjects = []models.SubjectWithCourse{}
	}
	return subjects, nil
}

// List returns every teacher, for the admin panel.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return teachers, nil
}

// UpdateTeacherRequest is the admin payload for editing a teacher.
type UpdateTeacherRequest struct {
	Name          string  `json:"name" validate:"required,min=2"`
	Email         string  `json:"email" validate:"required,email"`
	TutorCourseID *string `json:"tutor_course_id"`
}

// Update edits a teacher's name, email and tutor course. Emails stay unique
// across teachers.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de docente inválidos")
	}

	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "docente no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
	}

	taken, err := s.teachers.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el correo ya está en uso por otro docente")
	}

	teacher.Name = req.Name
	teacher.Email = req.Email
	teacher.TutorCourseID = req.TutorCourseID
	if err := s.teachers.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher. Teachers that still own subjects are protected.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.teachers.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "docente no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
	}

	total, err := s.subjects.CountByTeacher(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subjects")
	}
	if total > 0 {
		return appErrors.Clone(appErrors.ErrHasReferences, "el docente tiene materias asignadas")
	}

	if err := s.teachers.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}
