package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
)

// SettingsRepository manages the academic settings singleton, the live
// subject-hours table and the immutable yearly snapshots.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings fetches the singleton settings row.
func (r *SettingsRepository) GetSettings(ctx context.Context) (*models.AcademicSettings, error) {
	const query = `SELECT id, active_year, terms_count, created_at, updated_at FROM academic_settings ORDER BY created_at ASC LIMIT 1`
	var settings models.AcademicSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertSettings writes the singleton row, creating it on first use.
func (r *SettingsRepository) UpsertSettings(ctx context.Context, activeYear, termsCount int) (*models.AcademicSettings, error) {
	existing, err := r.GetSettings(ctx)
	now := time.Now().UTC()
	if err != nil {
		settings := &models.AcademicSettings{
			ID:         uuid.NewString(),
			ActiveYear: activeYear,
			TermsCount: termsCount,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		const insert = `INSERT INTO academic_settings (id, active_year, terms_count, created_at, updated_at)
			VALUES (:id, :active_year, :terms_count, :created_at, :updated_at)`
		if _, err := r.db.NamedExecContext(ctx, insert, settings); err != nil {
			return nil, fmt.Errorf("create academic settings: %w", err)
		}
		return settings, nil
	}

	existing.ActiveYear = activeYear
	existing.TermsCount = termsCount
	existing.UpdatedAt = now
	const update = `UPDATE academic_settings SET active_year = :active_year, terms_count = :terms_count, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, update, existing); err != nil {
		return nil, fmt.Errorf("update academic settings: %w", err)
	}
	return existing, nil
}

// ListHours returns the live subject-hours allocation ordered by subject and
// grade.
func (r *SettingsRepository) ListHours(ctx context.Context) ([]models.SubjectGradeHours, error) {
	const query = `SELECT subject, grade, hours FROM subject_grade_hours ORDER BY subject ASC, grade ASC`
	var hours []models.SubjectGradeHours
	if err := r.db.SelectContext(ctx, &hours, query); err != nil {
		return nil, fmt.Errorf("list subject hours: %w", err)
	}
	return hours, nil
}

// UpsertHours writes one (subject, grade) allocation, last write wins.
func (r *SettingsRepository) UpsertHours(ctx context.Context, entry models.SubjectGradeHours) error {
	const query = `INSERT INTO subject_grade_hours (subject, grade, hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject, grade) DO UPDATE SET hours = EXCLUDED.hours`
	if _, err := r.db.ExecContext(ctx, query, entry.Subject, entry.Grade, entry.Hours); err != nil {
		return fmt.Errorf("upsert subject hours: %w", err)
	}
	return nil
}

// DeleteAllHours clears the live allocation and reports how many rows went.
func (r *SettingsRepository) DeleteAllHours(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM subject_grade_hours")
	if err != nil {
		return 0, fmt.Errorf("delete subject hours: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted subject hours: %w", err)
	}
	return deleted, nil
}

// SaveSnapshot persists the settings, upserts the given rows into the live
// allocation and appends an immutable year-tagged profile holding a full
// copy of the resulting live table, all in one transaction.
func (r *SettingsRepository) SaveSnapshot(ctx context.Context, activeYear, termsCount int, hours []models.SubjectGradeHours) (*models.SubjectHoursProfile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var settingsID string
	err = tx.GetContext(ctx, &settingsID, "SELECT id FROM academic_settings ORDER BY created_at ASC LIMIT 1")
	if err != nil {
		settingsID = uuid.NewString()
		const insertSettings = `INSERT INTO academic_settings (id, active_year, terms_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)`
		if _, err := tx.ExecContext(ctx, insertSettings, settingsID, activeYear, termsCount, now); err != nil {
			return nil, fmt.Errorf("create academic settings: %w", err)
		}
	} else {
		const updateSettings = `UPDATE academic_settings SET active_year = $1, terms_count = $2, updated_at = $3 WHERE id = $4`
		if _, err := tx.ExecContext(ctx, updateSettings, activeYear, termsCount, now, settingsID); err != nil {
			return nil, fmt.Errorf("update academic settings: %w", err)
		}
	}

	const upsertHours = `INSERT INTO subject_grade_hours (subject, grade, hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject, grade) DO UPDATE SET hours = EXCLUDED.hours`
	for _, entry := range hours {
		if _, err := tx.ExecContext(ctx, upsertHours, entry.Subject, entry.Grade, entry.Hours); err != nil {
			return nil, fmt.Errorf("upsert subject hours: %w", err)
		}
	}

	// The profile copies the whole live table as it stands after the
	// upserts, not just the rows in this save.
	var live []models.SubjectGradeHours
	const selectLive = `SELECT subject, grade, hours FROM subject_grade_hours ORDER BY subject ASC, grade ASC`
	if err := tx.SelectContext(ctx, &live, selectLive); err != nil {
		return nil, fmt.Errorf("read subject hours for snapshot: %w", err)
	}

	profile := &models.SubjectHoursProfile{
		ID:        uuid.NewString(),
		Year:      activeYear,
		CreatedAt: now,
	}
	const insertProfile = `INSERT INTO subject_hours_profiles (id, year, created_at) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertProfile, profile.ID, profile.Year, profile.CreatedAt); err != nil {
		return nil, fmt.Errorf("create hours profile: %w", err)
	}

	const insertEntry = `INSERT INTO subject_hours_profile_entries (profile_id, subject, grade, hours) VALUES ($1, $2, $3, $4)`
	for _, entry := range live {
		if _, err := tx.ExecContext(ctx, insertEntry, profile.ID, entry.Subject, entry.Grade, entry.Hours); err != nil {
			return nil, fmt.Errorf("create hours profile entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return profile, nil
}

// ListProfiles returns snapshot headers, newest first.
func (r *SettingsRepository) ListProfiles(ctx context.Context) ([]models.SubjectHoursProfile, error) {
	const query = `SELECT id, year, created_at FROM subject_hours_profiles ORDER BY created_at DESC`
	var profiles []models.SubjectHoursProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list hours profiles: %w", err)
	}
	return profiles, nil
}

// EntriesByProfile returns the copied rows of one snapshot.
func (r *SettingsRepository) EntriesByProfile(ctx context.Context, profileID string) ([]models.SubjectHoursProfileEntry, error) {
	const query = `SELECT profile_id, subject, grade, hours FROM subject_hours_profile_entries WHERE profile_id = $1 ORDER BY subject ASC, grade ASC`
	var entries []models.SubjectHoursProfileEntry
	if err := r.db.SelectContext(ctx, &entries, query, profileID); err != nil {
		return nil, fmt.Errorf("list profile entries: %w", err)
	}
	return entries, nil
}
