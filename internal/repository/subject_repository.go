package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
)

// SubjectRepository reads subjects and their weekly schedules.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, teacher_id, course_id, hours_per_week, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListByTeacher returns the teacher's subjects decorated with course names.
func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.SubjectWithCourse, error) {
	const query = `SELECT s.id, s.name, s.teacher_id, s.course_id, s.hours_per_week, s.created_at, s.updated_at, c.name AS course_name
FROM subjects s
JOIN courses c ON c.id = s.course_id
WHERE s.teacher_id = $1
ORDER BY s.name ASC`
	var subjects []models.SubjectWithCourse
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list subjects by teacher: %w", err)
	}
	return subjects, nil
}

// ListAll returns every subject decorated with course names.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.SubjectWithCourse, error) {
	const query = `SELECT s.id, s.name, s.teacher_id, s.course_id, s.hours_per_week, s.created_at, s.updated_at, c.name AS course_name
FROM subjects s
JOIN courses c ON c.id = s.course_id
ORDER BY s.name ASC`
	var subjects []models.SubjectWithCourse
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListIDsByCourse returns the subject ids taught to a course.
func (r *SubjectRepository) ListIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM subjects WHERE course_id = $1", courseID); err != nil {
		return nil, fmt.Errorf("list subject ids by course: %w", err)
	}
	return ids, nil
}

// CountByTeacher returns how many subjects a teacher owns.
func (r *SubjectRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subjects WHERE teacher_id = $1", teacherID); err != nil {
		return 0, fmt.Errorf("count subjects by teacher: %w", err)
	}
	return total, nil
}

// FindScheduleByID fetches a schedule slot by ID.
func (r *SubjectRepository) FindScheduleByID(ctx context.Context, id string) (*models.Schedule, error) {
	const query = `SELECT id, subject_id, day_of_week, start_time, end_time, created_at, updated_at FROM schedules WHERE id = $1`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// TodayClasses returns the teacher's timetable slots for the given weekday
// (Monday=1..Sunday=7) sorted by start time.
func (r *SubjectRepository) TodayClasses(ctx context.Context, teacherID string, dayOfWeek int) ([]models.TodayClass, error) {
	const query = `SELECT sch.id AS schedule_id, s.id AS subject_id, s.name AS subject_name, s.hours_per_week,
	s.course_id, c.name AS course_name, sch.start_time, sch.end_time, sch.day_of_week
FROM schedules sch
JOIN subjects s ON s.id = sch.subject_id
JOIN courses c ON c.id = s.course_id
WHERE s.teacher_id = $1 AND sch.day_of_week = $2
ORDER BY sch.start_time ASC`
	var classes []models.TodayClass
	if err := r.db.SelectContext(ctx, &classes, query, teacherID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("today classes: %w", err)
	}
	return classes, nil
}
