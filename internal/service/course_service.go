package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
}

// CourseService lists course sections for the admin panel.
type CourseService struct {
	courses courseRepository
	logger  *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses courseRepository, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, logger: logger}
}

// List returns every course ordered by name.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}
