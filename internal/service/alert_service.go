package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type alertSubjectRepository interface {
	ListIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

type alertAttendanceRepository interface {
	AbsenceRowsForSubjects(ctx context.Context, subjectIDs []string) ([]models.AbsenceRow, error)
	SessionDatesForSubjects(ctx context.Context, subjectIDs []string) ([]time.Time, error)
	CountRecordsForSubjects(ctx context.Context, subjectIDs []string) (int, error)
}

type alertStudentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
}

// AlertConfig tunes the consecutive-absence threshold.
type AlertConfig struct {
	Streak int
}

// AlertService computes consecutive-absence streaks and attendance
// summaries per course, always from raw rows at request time.
type AlertService struct {
	subjects alertSubjectRepository
	records  alertAttendanceRepository
	students alertStudentRepository
	logger   *zap.Logger
	config   AlertConfig
}

// NewAlertService constructs the alert service.
func NewAlertService(subjects alertSubjectRepository, records alertAttendanceRepository, students alertStudentRepository, logger *zap.Logger, config AlertConfig) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Streak <= 0 {
		config.Streak = 3
	}
	return &AlertService{subjects: subjects, records: records, students: students, logger: logger, config: config}
}

func (s *AlertService) courseData(ctx context.Context, courseID string) ([]models.Student, []string, error) {
	if courseID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "course_id es obligatorio")
	}
	roster, err := s.students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch roster")
	}
	subjectIDs, err := s.subjects.ListIDsByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course subjects")
	}
	return roster, subjectIDs, nil
}

// Alerts flags the students whose run of most-recent session dates are all
// absences. The streak walks distinct session dates newest first and breaks
// at the first date the student attended, so a student present in the latest
// session scores zero no matter how many older absences exist.
func (s *AlertService) Alerts(ctx context.Context, courseID string) ([]models.StudentAlert, error) {
	roster, subjectIDs, err := s.courseData(ctx, courseID)
	if err != nil {
		return nil, err
	}

	sessionDates, err := s.records.SessionDatesForSubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session dates")
	}
	rows, err := s.records.AbsenceRowsForSubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch absences")
	}

	absentDates := make(map[string]map[string]bool)
	for _, row := range rows {
		day := row.Date.Format("2006-01-02")
		set := absentDates[row.StudentID]
		if set == nil {
			set = make(map[string]bool)
			absentDates[row.StudentID] = set
		}
		set[day] = true
	}

	alerts := make([]models.StudentAlert, 0)
	for _, student := range roster {
		streak := 0
		for _, date := range sessionDates {
			if !absentDates[student.ID][date.Format("2006-01-02")] {
				break
			}
			streak++
		}
		if streak >= s.config.Streak {
			alerts = append(alerts, models.StudentAlert{
				StudentID:           student.ID,
				StudentName:         student.Name,
				ConsecutiveAbsences: streak,
			})
		}
	}
	return alerts, nil
}

// Summary reports sessions held, absences and a rounded attendance
// percentage clamped to [0,100] for each student of the course.
func (s *AlertService) Summary(ctx context.Context, courseID string) ([]models.StudentAttendanceSummary, error) {
	roster, subjectIDs, err := s.courseData(ctx, courseID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.records.CountRecordsForSubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	}
	rows, err := s.records.AbsenceRowsForSubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch absences")
	}

	absencesByStudent := make(map[string]int)
	for _, row := range rows {
		absencesByStudent[row.StudentID]++
	}

	summaries := make([]models.StudentAttendanceSummary, 0, len(roster))
	for _, student := range roster {
		absences := absencesByStudent[student.ID]
		percentage := 100
		if sessions > 0 {
			percentage = int(math.Round(float64(sessions-absences) / float64(sessions) * 100))
		}
		if percentage < 0 {
			percentage = 0
		}
		if percentage > 100 {
			percentage = 100
		}
		summaries = append(summaries, models.StudentAttendanceSummary{
			StudentID:  student.ID,
			Sessions:   sessions,
			Absences:   absences,
			Percentage: percentage,
		})
	}
	return summaries, nil
}
