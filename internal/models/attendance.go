package models

import "time"

// AttendanceRecord is one take of attendance for a subject+schedule+date.
// Students of the course that are not listed as absent are present.
type AttendanceRecord struct {
	ID         string    `db:"id" json:"id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	ScheduleID string    `db:"schedule_id" json:"schedule_id"`
	Date       time.Time `db:"attendance_date" json:"attendance_date"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AbsentStudent is one absence entry under an attendance record.
type AbsentStudent struct {
	ID                 string `db:"id" json:"id"`
	AttendanceRecordID string `db:"attendance_record_id" json:"attendance_record_id"`
	StudentID          string `db:"student_id" json:"student_id"`
	HoursCount         *int   `db:"hours_count" json:"hours_count"`
}

// AbsenceRow joins an absence entry with its record date, used by the
// streak and aggregation computations.
type AbsenceRow struct {
	AttendanceRecordID string    `db:"attendance_record_id"`
	StudentID          string    `db:"student_id"`
	Date               time.Time `db:"attendance_date"`
	HoursCount         *int      `db:"hours_count"`
}

// DailyReport summarises one attendance record against the course roster.
type DailyReport struct {
	Date                 string    `json:"date"`
	CourseName           string    `json:"course_name"`
	SubjectName          string    `json:"subject_name"`
	TotalStudents        int       `json:"total_students"`
	PresentCount         int       `json:"present_count"`
	AbsentCount          int       `json:"absent_count"`
	AttendancePercentage float64   `json:"attendance_percentage"`
	AbsentStudents       []Student `json:"absent_students"`
	PresentStudents      []Student `json:"present_students"`
}

// DailyAbsence aggregates one student's absences across a single day.
type DailyAbsence struct {
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	CourseID     string `json:"course_id,omitempty"`
	CourseName   string `json:"course_name,omitempty"`
	AbsenceCount int    `json:"absence_count"`
	TotalHours   int    `json:"total_hours"`
}

// AttendanceRecordSummary lists a record enriched for the admin panel.
type AttendanceRecordSummary struct {
	ID          string    `db:"id" json:"id"`
	Date        time.Time `db:"attendance_date" json:"attendance_date"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	CourseName  *string   `db:"course_name" json:"course_name"`
	TeacherName *string   `db:"teacher_name" json:"teacher_name"`
	AbsentCount int       `db:"absent_count" json:"absent_count"`
}
