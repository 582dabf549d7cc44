package models

import "time"

// Subject is a course offering taught by one teacher to one course section.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectWithCourse decorates a subject with its course name for listings.
type SubjectWithCourse struct {
	Subject
	CourseName string `db:"course_name" json:"course_name"`
}

// Schedule is a recurring weekly time slot bound to a subject.
// DayOfWeek runs Monday=1 through Sunday=7.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
