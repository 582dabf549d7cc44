package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
)

// AttendanceRepository manages attendance records and their absence entries.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ExistsForSlot checks whether attendance was already taken for the
// subject+schedule+date combination.
func (r *AttendanceRepository) ExistsForSlot(ctx context.Context, subjectID, scheduleID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM attendance_records WHERE subject_id = $1 AND schedule_id = $2 AND attendance_date = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, subjectID, scheduleID, date); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check attendance slot: %w", err)
	}
	return true, nil
}

// CreateWithAbsences inserts the record and all of its absence entries in a
// single transaction.
func (r *AttendanceRepository) CreateWithAbsences(ctx context.Context, record *models.AttendanceRecord, absentStudentIDs []string, hoursCount *int) ([]models.AbsentStudent, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin attendance tx: %w", err)
	}
	defer tx.Rollback()

	const insertRecord = `INSERT INTO attendance_records (id, subject_id, schedule_id, attendance_date, teacher_id, created_at, updated_at)
		VALUES (:id, :subject_id, :schedule_id, :attendance_date, :teacher_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertRecord, record); err != nil {
		return nil, fmt.Errorf("create attendance record: %w", err)
	}

	const insertAbsence = `INSERT INTO absent_students (id, attendance_record_id, student_id, hours_count)
		VALUES ($1, $2, $3, $4)`
	absences := make([]models.AbsentStudent, 0, len(absentStudentIDs))
	for _, studentID := range absentStudentIDs {
		entry := models.AbsentStudent{
			ID:                 uuid.NewString(),
			AttendanceRecordID: record.ID,
			StudentID:          studentID,
			HoursCount:         hoursCount,
		}
		if _, err := tx.ExecContext(ctx, insertAbsence, entry.ID, entry.AttendanceRecordID, entry.StudentID, entry.HoursCount); err != nil {
			return nil, fmt.Errorf("create absence entry: %w", err)
		}
		absences = append(absences, entry)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit attendance tx: %w", err)
	}
	return absences, nil
}

// FindByID fetches an attendance record by ID.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	const query = `SELECT id, subject_id, schedule_id, attendance_date, teacher_id, created_at, updated_at FROM attendance_records WHERE id = $1`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByTeacherAndDate returns the teacher's records for one day.
func (r *AttendanceRepository) ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, subject_id, schedule_id, attendance_date, teacher_id, created_at, updated_at
FROM attendance_records
WHERE teacher_id = $1 AND attendance_date = $2
ORDER BY created_at ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list attendance by teacher and date: %w", err)
	}
	return records, nil
}

// ListByDate returns every record taken on one day, school wide.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, subject_id, schedule_id, attendance_date, teacher_id, created_at, updated_at
FROM attendance_records
WHERE attendance_date = $1
ORDER BY created_at ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return records, nil
}

// AbsencesByRecordIDs returns the absence entries belonging to the given
// records.
func (r *AttendanceRepository) AbsencesByRecordIDs(ctx context.Context, recordIDs []string) ([]models.AbsentStudent, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id, attendance_record_id, student_id, hours_count FROM absent_students WHERE attendance_record_id IN (?)", recordIDs)
	if err != nil {
		return nil, fmt.Errorf("build absences query: %w", err)
	}
	var absences []models.AbsentStudent
	if err := r.db.SelectContext(ctx, &absences, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list absences by records: %w", err)
	}
	return absences, nil
}

// AbsentStudentIDs returns the distinct student ids marked absent on a record.
func (r *AttendanceRepository) AbsentStudentIDs(ctx context.Context, recordID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT student_id FROM absent_students WHERE attendance_record_id = $1", recordID); err != nil {
		return nil, fmt.Errorf("list absent student ids: %w", err)
	}
	return ids, nil
}

// ListRecent returns the latest records enriched with subject, course and
// teacher names, capped at limit.
func (r *AttendanceRepository) ListRecent(ctx context.Context, limit int) ([]models.AttendanceRecordSummary, error) {
	const query = `SELECT ar.id, ar.attendance_date, s.name AS subject_name, c.name AS course_name, t.name AS teacher_name,
	(SELECT COUNT(*) FROM absent_students ab WHERE ab.attendance_record_id = ar.id) AS absent_count
FROM attendance_records ar
JOIN subjects s ON s.id = ar.subject_id
LEFT JOIN courses c ON c.id = s.course_id
LEFT JOIN teachers t ON t.id = ar.teacher_id
ORDER BY ar.attendance_date DESC, ar.created_at DESC
LIMIT $1`
	var records []models.AttendanceRecordSummary
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list recent attendance: %w", err)
	}
	return records, nil
}

// DeleteWithAbsences removes a record and its absence entries in a single
// transaction.
func (r *AttendanceRepository) DeleteWithAbsences(ctx context.Context, recordID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM absent_students WHERE attendance_record_id = $1", recordID); err != nil {
		return fmt.Errorf("delete absence entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance_records WHERE id = $1", recordID); err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// AbsenceRowsForSubjects returns every absence entry joined with its record
// date for the given subjects, most recent dates first.
func (r *AttendanceRepository) AbsenceRowsForSubjects(ctx context.Context, subjectIDs []string) ([]models.AbsenceRow, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT ab.attendance_record_id, ab.student_id, ar.attendance_date, ab.hours_count
FROM absent_students ab
JOIN attendance_records ar ON ar.id = ab.attendance_record_id
WHERE ar.subject_id IN (?)
ORDER BY ar.attendance_date DESC`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build absence rows query: %w", err)
	}
	var rows []models.AbsenceRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list absence rows for subjects: %w", err)
	}
	return rows, nil
}

// SessionDatesForSubjects returns the distinct dates on which attendance was
// taken for the given subjects, most recent first.
func (r *AttendanceRepository) SessionDatesForSubjects(ctx context.Context, subjectIDs []string) ([]time.Time, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT attendance_date FROM attendance_records WHERE subject_id IN (?) ORDER BY attendance_date DESC`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build session dates query: %w", err)
	}
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list session dates: %w", err)
	}
	return dates, nil
}

// CountRecordsForSubjects returns the number of attendance sessions held for
// the given subjects.
func (r *AttendanceRepository) CountRecordsForSubjects(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("SELECT COUNT(*) FROM attendance_records WHERE subject_id IN (?)", subjectIDs)
	if err != nil {
		return 0, fmt.Errorf("build session count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count sessions for subjects: %w", err)
	}
	return total, nil
}
