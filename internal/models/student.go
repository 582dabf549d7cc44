package models

import "time"

// Student belongs to exactly one course. Contact and guardian data is
// optional and mostly filled by CSV imports.
type Student struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	CourseID      string    `db:"course_id" json:"course_id"`
	Phone         *string   `db:"phone" json:"phone"`
	Email         *string   `db:"email" json:"email"`
	GuardianName  *string   `db:"guardian_name" json:"guardian_name"`
	GuardianPhone *string   `db:"guardian_phone" json:"guardian_phone"`
	Address       *string   `db:"address" json:"address"`
	HasInsurance  *bool     `db:"has_student_insurance" json:"has_student_insurance"`
	BloodType     *string   `db:"blood_type" json:"blood_type"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentAlert flags a leading run of absence dates for one student.
type StudentAlert struct {
	StudentID           string `json:"student_id"`
	StudentName         string `json:"student_name"`
	ConsecutiveAbsences int    `json:"consecutive_absences"`
}

// StudentAttendanceSummary aggregates sessions vs absences for one student.
type StudentAttendanceSummary struct {
	StudentID  string `json:"student_id"`
	Sessions   int    `json:"sessions"`
	Absences   int    `json:"absences"`
	Percentage int    `json:"percentage"`
}
