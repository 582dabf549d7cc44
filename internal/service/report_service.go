package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/export"
)

type reportAttendanceRepository interface {
	ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.AttendanceRecord, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error)
	AbsencesByRecordIDs(ctx context.Context, recordIDs []string) ([]models.AbsentStudent, error)
}

type reportSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type reportCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type reportStudentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type reportSettingsRepository interface {
	GetSettings(ctx context.Context) (*models.AcademicSettings, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportConfig tunes report caching.
type ReportConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ReportService builds daily attendance reports, the CSV export and the
// school-wide absence aggregation.
type ReportService struct {
	records  reportAttendanceRepository
	subjects reportSubjectRepository
	courses  reportCourseRepository
	students reportStudentRepository
	settings reportSettingsRepository
	profiles profileResolver
	cache    reportCache
	exporter *export.CSVExporter
	logger   *zap.Logger
	config   ReportConfig
}

// NewReportService constructs the report service.
func NewReportService(records reportAttendanceRepository, subjects reportSubjectRepository, courses reportCourseRepository, students reportStudentRepository, settings reportSettingsRepository, profiles profileResolver, cache reportCache, logger *zap.Logger, config ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &ReportService{
		records:  records,
		subjects: subjects,
		courses:  courses,
		students: students,
		settings: settings,
		profiles: profiles,
		cache:    cache,
		exporter: export.NewCSVExporter(),
		logger:   logger,
		config:   config,
	}
}

// DailyReportFilter narrows the daily report to one course or subject.
type DailyReportFilter struct {
	Date      string
	CourseID  string
	SubjectID string
}

func parseReportDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "fecha inválida, use AAAA-MM-DD")
	}
	return date, nil
}

// DailyReports builds one report row per attendance record the caller took
// on the date. Present students are the roster minus the absent set.
func (s *ReportService) DailyReports(ctx context.Context, claims *models.AuthClaims, filter DailyReportFilter) ([]models.DailyReport, error) {
	date, err := parseReportDate(filter.Date)
	if err != nil {
		return nil, err
	}

	teacher, err := s.profiles.Profile(ctx, claims)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByTeacherAndDate(ctx, teacher.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}

	reports := make([]models.DailyReport, 0, len(records))
	absentByRecord, err := s.absencesByRecord(ctx, records)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if filter.SubjectID != "" && record.SubjectID != filter.SubjectID {
			continue
		}
		subject, err := s.subjects.FindByID(ctx, record.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
		}
		if filter.CourseID != "" && subject.CourseID != filter.CourseID {
			continue
		}

		report, err := s.buildReport(ctx, record, subject, absentByRecord[record.ID])
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func (s *ReportService) absencesByRecord(ctx context.Context, records []models.AttendanceRecord) (map[string]map[string]bool, error) {
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	entries, err := s.records.AbsencesByRecordIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	byRecord := make(map[string]map[string]bool, len(records))
	for _, entry := range entries {
		set := byRecord[entry.AttendanceRecordID]
		if set == nil {
			set = make(map[string]bool)
			byRecord[entry.AttendanceRecordID] = set
		}
		set[entry.StudentID] = true
	}
	return byRecord, nil
}

func (s *ReportService) buildReport(ctx context.Context, record models.AttendanceRecord, subject *models.Subject, absentSet map[string]bool) (*models.DailyReport, error) {
	roster, err := s.students.ListByCourse(ctx, subject.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch roster")
	}

	courseName := ""
	if course, err := s.courses.FindByID(ctx, subject.CourseID); err == nil {
		courseName = course.Name
	}

	absent := make([]models.Student, 0)
	present := make([]models.Student, 0, len(roster))
	for _, student := range roster {
		if absentSet[student.ID] {
			absent = append(absent, student)
		} else {
			present = append(present, student)
		}
	}

	percentage := 0.0
	if len(roster) > 0 {
		percentage = float64(len(present)) / float64(len(roster)) * 100
	}

	return &models.DailyReport{
		Date:                 record.Date.Format("2006-01-02"),
		CourseName:           courseName,
		SubjectName:          subject.Name,
		TotalStudents:        len(roster),
		PresentCount:         len(present),
		AbsentCount:          len(absent),
		AttendancePercentage: percentage,
		AbsentStudents:       absent,
		PresentStudents:      present,
	}, nil
}

// ExportCSV renders the caller's absent rows for the date as CSV, preceded
// by the active academic year when settings exist.
func (s *ReportService) ExportCSV(ctx context.Context, claims *models.AuthClaims, rawDate string) ([]byte, string, error) {
	date, err := parseReportDate(rawDate)
	if err != nil {
		return nil, "", err
	}

	teacher, err := s.profiles.Profile(ctx, claims)
	if err != nil {
		return nil, "", err
	}

	records, err := s.records.ListByTeacherAndDate(ctx, teacher.ID, date)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	absentByRecord, err := s.absencesByRecord(ctx, records)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"fecha", "curso", "materia", "estudiante"},
	}
	if settings, err := s.settings.GetSettings(ctx); err == nil {
		dataset.Preamble = [][]string{{fmt.Sprintf("Año académico: %d", settings.ActiveYear)}}
	}

	for _, record := range records {
		subject, err := s.subjects.FindByID(ctx, record.SubjectID)
		if err != nil {
			continue
		}
		courseName := ""
		if course, err := s.courses.FindByID(ctx, subject.CourseID); err == nil {
			courseName = course.Name
		}
		for studentID := range absentByRecord[record.ID] {
			student, err := s.students.FindByID(ctx, studentID)
			if err != nil {
				continue
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"fecha":      record.Date.Format("2006-01-02"),
				"curso":      courseName,
				"materia":    subject.Name,
				"estudiante": student.Name,
			})
		}
	}

	sort.Slice(dataset.Rows, func(i, j int) bool {
		if dataset.Rows[i]["curso"] != dataset.Rows[j]["curso"] {
			return dataset.Rows[i]["curso"] < dataset.Rows[j]["curso"]
		}
		return dataset.Rows[i]["estudiante"] < dataset.Rows[j]["estudiante"]
	})

	payload, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := "asistencia_" + date.Format("2006-01-02") + ".csv"
	return payload, filename, nil
}

// DailyAbsences aggregates every absence of the day school wide, one row per
// student sorted by course then student name. Results are cached briefly.
func (s *ReportService) DailyAbsences(ctx context.Context, rawDate string) ([]models.DailyAbsence, error) {
	date, err := parseReportDate(rawDate)
	if err != nil {
		return nil, err
	}
	day := date.Format("2006-01-02")

	cacheKey := "reports:absences:" + day
	if s.config.CacheEnabled && s.cache != nil {
		var cached []models.DailyAbsence
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("daily absences cache read failed", zap.Error(err))
		}
	}

	records, err := s.records.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	recordIDs := make([]string, 0, len(records))
	courseBySubject := make(map[string]string, len(records))
	for _, record := range records {
		recordIDs = append(recordIDs, record.ID)
		if _, ok := courseBySubject[record.SubjectID]; !ok {
			if subject, err := s.subjects.FindByID(ctx, record.SubjectID); err == nil {
				courseBySubject[record.SubjectID] = subject.CourseID
			}
		}
	}
	courseByRecord := make(map[string]string, len(records))
	for _, record := range records {
		courseByRecord[record.ID] = courseBySubject[record.SubjectID]
	}

	entries, err := s.records.AbsencesByRecordIDs(ctx, recordIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}

	byStudent := make(map[string]*models.DailyAbsence)
	for _, entry := range entries {
		row := byStudent[entry.StudentID]
		if row == nil {
			student, err := s.students.FindByID(ctx, entry.StudentID)
			if err != nil {
				continue
			}
			row = &models.DailyAbsence{
				StudentID:   student.ID,
				StudentName: student.Name,
				CourseID:    student.CourseID,
			}
			if course, err := s.courses.FindByID(ctx, student.CourseID); err == nil {
				row.CourseName = course.Name
			}
			byStudent[entry.StudentID] = row
		}
		row.AbsenceCount++
		hours := 1
		if entry.HoursCount != nil {
			hours = *entry.HoursCount
		}
		row.TotalHours += hours
	}

	absences := make([]models.DailyAbsence, 0, len(byStudent))
	for _, row := range byStudent {
		absences = append(absences, *row)
	}
	sort.Slice(absences, func(i, j int) bool {
		if absences[i].CourseName != absences[j].CourseName {
			return absences[i].CourseName < absences[j].CourseName
		}
		return absences[i].StudentName < absences[j].StudentName
	})

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, absences, s.config.CacheTTL); err != nil {
			s.logger.Warn("daily absences cache write failed", zap.Error(err))
		}
	}
	return absences, nil
}
