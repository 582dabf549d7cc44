package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type attendanceRepository interface {
	ExistsForSlot(ctx context.Context, subjectID, scheduleID string, date time.Time) (bool, error)
	CreateWithAbsences(ctx context.Context, record *models.AttendanceRecord, absentStudentIDs []string, hoursCount *int) ([]models.AbsentStudent, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.AttendanceRecordSummary, error)
	DeleteWithAbsences(ctx context.Context, recordID string) error
}

type attendanceSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindScheduleByID(ctx context.Context, id string) (*models.Schedule, error)
}

type rosterCounter interface {
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AttendanceConfig tunes the submission advisory.
type AttendanceConfig struct {
	AbsentAlertPercent float64
}

// AttendanceService handles attendance submission and the admin record
// listing and deletion.
type AttendanceService struct {
	records   attendanceRepository
	subjects  attendanceSubjectRepository
	students  rosterCounter
	profiles  profileResolver
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	config    AttendanceConfig
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records attendanceRepository, subjects attendanceSubjectRepository, students rosterCounter, profiles profileResolver, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger, config AttendanceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.AbsentAlertPercent <= 0 {
		config.AbsentAlertPercent = 50
	}
	return &AttendanceService{records: records, subjects: subjects, students: students, profiles: profiles, cache: cache, validator: validate, logger: logger, config: config}
}

// SubmitAttendanceRequest is the attendance-taking payload. Students not
// listed as absent are considered present.
type SubmitAttendanceRequest struct {
	SubjectID        string   `json:"subject_id" validate:"required"`
	ScheduleID       string   `json:"schedule_id" validate:"required"`
	AttendanceDate   string   `json:"attendance_date" validate:"required,datetime=2006-01-02"`
	AbsentStudentIDs []string `json:"absent_student_ids" validate:"omitempty,dive,required"`
}

// SubmitAttendanceResponse acknowledges a stored record. Alert is populated
// when the absent share of the roster crosses the configured threshold; it is
// advisory only and never persisted.
type SubmitAttendanceResponse struct {
	Success  bool   `json:"success"`
	RecordID string `json:"record_id"`
	Alert    string `json:"alert,omitempty"`
}

// Submit stores an attendance record with its absence entries. The subject
// must belong to the caller and the (subject, schedule, date) slot must not
// have been recorded before. The duplicate check is a read before the insert,
// so two simultaneous submissions can both pass it.
func (s *AttendanceService) Submit(ctx context.Context, claims *models.AuthClaims, req SubmitAttendanceRequest) (*SubmitAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de asistencia inválidos")
	}
	date, err := time.Parse("2006-01-02", req.AttendanceDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha de asistencia inválida")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
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

	schedule, err := s.subjects.FindScheduleByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "horario no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}
	if schedule.SubjectID != subject.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el horario no corresponde a la materia")
	}

	exists, err := s.records.ExistsForSlot(ctx, req.SubjectID, req.ScheduleID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing attendance")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateAttendance, "")
	}

	record := &models.AttendanceRecord{
		SubjectID:  req.SubjectID,
		ScheduleID: req.ScheduleID,
		Date:       date,
		TeacherID:  teacher.ID,
	}
	if _, err := s.records.CreateWithAbsences(ctx, record, req.AbsentStudentIDs, nil); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
	}

	resp := &SubmitAttendanceResponse{Success: true, RecordID: record.ID}
	total, err := s.students.CountByCourse(ctx, subject.CourseID)
	if err != nil {
		s.logger.Warn("failed to count roster for alert", zap.Error(err), zap.String("course_id", subject.CourseID))
	} else if total > 0 {
		percent := float64(len(req.AbsentStudentIDs)) / float64(total) * 100
		if percent > s.config.AbsentAlertPercent {
			resp.Alert = fmt.Sprintf("más del %.0f%% del curso está ausente", s.config.AbsentAlertPercent)
		}
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "reports:*"+req.AttendanceDate+"*"); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}

	s.logger.Info("attendance recorded",
		zap.String("record_id", record.ID),
		zap.String("subject_id", req.SubjectID),
		zap.String("date", req.AttendanceDate),
		zap.Int("absent", len(req.AbsentStudentIDs)))
	return resp, nil
}

// ListRecent returns the latest records enriched for the admin panel.
func (s *AttendanceService) ListRecent(ctx context.Context) ([]models.AttendanceRecordSummary, error) {
	records, err := s.records.ListRecent(ctx, 100)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	if records == nil {
		records = []models.AttendanceRecordSummary{}
	}
	return records, nil
}

// Delete removes an attendance record and its absence entries.
func (s *AttendanceService) Delete(ctx context.Context, recordID string) error {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registro de asistencia no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance record")
	}

	if err := s.records.DeleteWithAbsences(ctx, recordID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}

	if s.cache != nil {
		day := record.Date.Format("2006-01-02")
		if err := s.cache.DeleteByPattern(ctx, "reports:*"+day+"*"); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}
	return nil
}
