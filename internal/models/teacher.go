package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// Role is a staff role attached to a teacher record. The stored column has
// carried both JSON text and native arrays over time, so parsing is lenient.
type Role string

const (
	RoleAdmin       Role = "Administrador"
	RoleAdminShort  Role = "Admin."
	RoleCoordinator Role = "Coord."
	RoleStaff       Role = "Administrativo"
)

// RoleList normalises the roles column into a typed set.
type RoleList []Role

// Scan accepts a JSON array, a PostgreSQL array literal, or NULL. Anything
// unparseable yields an empty list rather than an error.
func (r *RoleList) Scan(value interface{}) error {
	*r = nil
	if value == nil {
		return nil
	}
	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil
		}
		for _, p := range parsed {
			if p != "" {
				*r = append(*r, Role(p))
			}
		}
		return nil
	}
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		for _, p := range strings.Split(strings.Trim(raw, "{}"), ",") {
			p = strings.Trim(strings.TrimSpace(p), `"`)
			if p != "" {
				*r = append(*r, Role(p))
			}
		}
	}
	return nil
}

// Value stores the list as a JSON array.
func (r RoleList) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "[]", nil
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// HasAdmin reports whether the list grants admin or coordinator access.
func (r RoleList) HasAdmin() bool {
	for _, role := range r {
		switch role {
		case RoleAdmin, RoleAdminShort, RoleCoordinator, RoleStaff:
			return true
		}
	}
	return false
}

// Teacher represents a teacher row linked to an external auth user.
type Teacher struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	UserID        string    `db:"user_id" json:"user_id"`
	Email         string    `db:"email" json:"email"`
	TutorCourseID *string   `db:"tutor_course_id" json:"tutor_course_id"`
	Roles         RoleList  `db:"roles" json:"roles"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TodayClass is one timetable slot for the authenticated teacher today.
type TodayClass struct {
	ScheduleID   string `db:"schedule_id" json:"schedule_id"`
	SubjectID    string `db:"subject_id" json:"subject_id"`
	SubjectName  string `db:"subject_name" json:"subject_name"`
	HoursPerWeek int    `db:"hours_per_week" json:"hours_per_week"`
	CourseID     string `db:"course_id" json:"course_id"`
	CourseName   string `db:"course_name" json:"course_name"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
	DayOfWeek    int    `db:"day_of_week" json:"day_of_week"`
}
