package models

import "time"

// AcademicSettings is the singleton row holding the active school year.
type AcademicSettings struct {
	ID         string    `db:"id" json:"id"`
	ActiveYear int       `db:"active_year" json:"active_year"`
	TermsCount int       `db:"terms_count" json:"terms_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectGradeHours is the live per-subject-per-grade hour allocation,
// keyed by (subject, grade).
type SubjectGradeHours struct {
	Subject string `db:"subject" json:"subject"`
	Grade   int    `db:"grade" json:"grade"`
	Hours   int    `db:"hours" json:"hours"`
}

// SubjectHoursProfile is an immutable yearly snapshot header.
type SubjectHoursProfile struct {
	ID        string    `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectHoursProfileEntry is one copied row inside a snapshot.
type SubjectHoursProfileEntry struct {
	ProfileID string `db:"profile_id" json:"-"`
	Subject   string `db:"subject" json:"subject"`
	Grade     int    `db:"grade" json:"grade"`
	Hours     int    `db:"hours" json:"hours"`
}

// SubjectHoursSummary is the representative hours figure for one subject
// inside a grade bucket.
type SubjectHoursSummary struct {
	Subject string `json:"subject"`
	Hours   int    `json:"hours"`
}

// ProfileHistoryEntry is one snapshot rendered for the history endpoint.
type ProfileHistoryEntry struct {
	Year         int                   `json:"year"`
	Active       bool                  `json:"vigente"`
	CreatedAt    time.Time             `json:"created_at"`
	Grades6to9   []SubjectHoursSummary `json:"grados_6_9"`
	Grades10to11 []SubjectHoursSummary `json:"grados_10_11"`
}
