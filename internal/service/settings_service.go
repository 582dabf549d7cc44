package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type settingsRepository interface {
	GetSettings(ctx context.Context) (*models.AcademicSettings, error)
	UpsertSettings(ctx context.Context, activeYear, termsCount int) (*models.AcademicSettings, error)
	ListHours(ctx context.Context) ([]models.SubjectGradeHours, error)
	UpsertHours(ctx context.Context, entry models.SubjectGradeHours) error
	DeleteAllHours(ctx context.Context) (int64, error)
	SaveSnapshot(ctx context.Context, activeYear, termsCount int, hours []models.SubjectGradeHours) (*models.SubjectHoursProfile, error)
	ListProfiles(ctx context.Context) ([]models.SubjectHoursProfile, error)
	EntriesByProfile(ctx context.Context, profileID string) ([]models.SubjectHoursProfileEntry, error)
}

const defaultTermsCount = 3

// SettingsService manages the academic year singleton, the live
// subject-hours allocation and the yearly configuration snapshots.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// GetSettings returns the singleton row, creating it with the current year
// and three terms on first access.
func (s *SettingsService) GetSettings(ctx context.Context) (*models.AcademicSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch settings")
	}
	settings, err = s.repo.UpsertSettings(ctx, s.now().Year(), defaultTermsCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create settings")
	}
	return settings, nil
}

// UpdateSettingsRequest is the admin payload for the settings singleton.
type UpdateSettingsRequest struct {
	ActiveYear int `json:"active_year" validate:"required,min=1"`
	TermsCount int `json:"terms_count" validate:"required,min=1"`
}

// UpdateSettings overwrites the singleton row.
func (s *SettingsService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.AcademicSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "configuración inválida")
	}
	settings, err := s.repo.UpsertSettings(ctx, req.ActiveYear, req.TermsCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return settings, nil
}

// ListHours returns the live allocation ordered by subject and grade.
func (s *SettingsService) ListHours(ctx context.Context) ([]models.SubjectGradeHours, error) {
	hours, err := s.repo.ListHours(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject hours")
	}
	if hours == nil {
		hours = []models.SubjectGradeHours{}
	}
	return hours, nil
}

// SubjectHoursEntry is one (subject, grade, hours) allocation in a bulk
// update.
type SubjectHoursEntry struct {
	Subject string `json:"subject" validate:"required"`
	Grade   int    `json:"grade" validate:"required,min=1"`
	Hours   int    `json:"hours" validate:"min=0"`
}

// UpdateHoursRequest bulk-upserts the live allocation.
type UpdateHoursRequest struct {
	Hours []SubjectHoursEntry `json:"hours" validate:"required,min=1,dive"`
}

// UpdateHours upserts each entry keyed on (subject, grade); the last write
// for a key wins.
func (s *SettingsService) UpdateHours(ctx context.Context, req UpdateHoursRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "horas de materia inválidas")
	}
	for _, entry := range req.Hours {
		row := models.SubjectGradeHours{Subject: entry.Subject, Grade: entry.Grade, Hours: entry.Hours}
		if err := s.repo.UpsertHours(ctx, row); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save subject hours")
		}
	}
	return nil
}

// ClearHours wipes the live allocation and reports the removed row count.
func (s *SettingsService) ClearHours(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAllHours(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear subject hours")
	}
	return deleted, nil
}

// SaveConfigRequest stores settings plus hours and snapshots the result.
type SaveConfigRequest struct {
	ActiveYear int                 `json:"active_year" validate:"required,min=1"`
	TermsCount int                 `json:"terms_count" validate:"required,min=1"`
	Hours      []SubjectHoursEntry `json:"hours" validate:"required,min=1,dive"`
}

// SaveConfig persists the settings and hour allocation and appends an
// immutable year-tagged snapshot of the full live table, all in one
// transaction.
func (s *SettingsService) SaveConfig(ctx context.Context, req SaveConfigRequest) (*models.SubjectHoursProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "configuración inválida")
	}

	rows := make([]models.SubjectGradeHours, 0, len(req.Hours))
	for _, entry := range req.Hours {
		rows = append(rows, models.SubjectGradeHours{Subject: entry.Subject, Grade: entry.Grade, Hours: entry.Hours})
	}

	profile, err := s.repo.SaveSnapshot(ctx, req.ActiveYear, req.TermsCount, rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save configuration")
	}
	s.logger.Info("configuration snapshot stored", zap.String("profile_id", profile.ID), zap.Int("year", profile.Year))
	return profile, nil
}

// History returns the stored snapshots newest-year first, each summarised
// into the 6-9 and 10-11 grade buckets with the most frequent hours value
// per subject. The first value seen wins frequency ties.
func (s *SettingsService) History(ctx context.Context) ([]models.ProfileHistoryEntry, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}

	activeYear := 0
	if settings, err := s.repo.GetSettings(ctx); err == nil {
		activeYear = settings.ActiveYear
	}

	history := make([]models.ProfileHistoryEntry, 0, len(profiles))
	for _, profile := range profiles {
		entries, err := s.repo.EntriesByProfile(ctx, profile.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profile entries")
		}
		history = append(history, models.ProfileHistoryEntry{
			Year:         profile.Year,
			Active:       profile.Year == activeYear,
			CreatedAt:    profile.CreatedAt,
			Grades6to9:   bucketSummary(entries, 6, 9),
			Grades10to11: bucketSummary(entries, 10, 11),
		})
	}

	sort.SliceStable(history, func(i, j int) bool { return history[i].Year > history[j].Year })
	return history, nil
}

// bucketSummary reduces a snapshot to one hours figure per subject within
// the grade range, using the mode of the per-grade values.
func bucketSummary(entries []models.SubjectHoursProfileEntry, minGrade, maxGrade int) []models.SubjectHoursSummary {
	type tally struct {
		counts map[int]int
		first  []int
	}
	order := make([]string, 0)
	bySubject := make(map[string]*tally)
	for _, entry := range entries {
		if entry.Grade < minGrade || entry.Grade > maxGrade {
			continue
		}
		t := bySubject[entry.Subject]
		if t == nil {
			t = &tally{counts: make(map[int]int)}
			bySubject[entry.Subject] = t
			order = append(order, entry.Subject)
		}
		if t.counts[entry.Hours] == 0 {
			t.first = append(t.first, entry.Hours)
		}
		t.counts[entry.Hours]++
	}

	summary := make([]models.SubjectHoursSummary, 0, len(order))
	for _, subject := range order {
		t := bySubject[subject]
		best := t.first[0]
		for _, value := range t.first {
			if t.counts[value] > t.counts[best] {
				best = value
			}
		}
		summary = append(summary, models.SubjectHoursSummary{Subject: subject, Hours: best})
	}
	return summary
}
