package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type alertSubjectsStub struct {
	ids []string
}

func (s alertSubjectsStub) ListIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	return s.ids, nil
}

type alertRecordsStub struct {
	rows     []models.AbsenceRow
	dates    []time.Time
	sessions int
}

func (s alertRecordsStub) AbsenceRowsForSubjects(ctx context.Context, subjectIDs []string) ([]models.AbsenceRow, error) {
	return s.rows, nil
}

func (s alertRecordsStub) SessionDatesForSubjects(ctx context.Context, subjectIDs []string) ([]time.Time, error) {
	return s.dates, nil
}

func (s alertRecordsStub) CountRecordsForSubjects(ctx context.Context, subjectIDs []string) (int, error) {
	return s.sessions, nil
}

type alertStudentsStub struct {
	students []models.Student
}

func (s alertStudentsStub) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	return s.students, nil
}

func day(offset int) time.Time {
	return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
}

func alertFixture(records alertRecordsStub, students ...models.Student) *AlertService {
	return NewAlertService(
		alertSubjectsStub{ids: []string{"s1"}},
		records,
		alertStudentsStub{students: students},
		zap.NewNop(),
		AlertConfig{Streak: 3},
	)
}

func TestAlertsFlagsThreeConsecutiveAbsences(t *testing.T) {
	records := alertRecordsStub{
		// Newest first, matching the repository ordering.
		dates: []time.Time{day(0), day(1), day(2), day(3)},
		rows: []models.AbsenceRow{
			{StudentID: "st1", Date: day(0)},
			{StudentID: "st1", Date: day(1)},
			{StudentID: "st1", Date: day(2)},
		},
	}
	svc := alertFixture(records, models.Student{ID: "st1", Name: "Carlos Pérez"})

	alerts, err := svc.Alerts(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "st1", alerts[0].StudentID)
	assert.Equal(t, 3, alerts[0].ConsecutiveAbsences)
}

func TestAlertsStreakBreaksAtMostRecentPresence(t *testing.T) {
	records := alertRecordsStub{
		dates: []time.Time{day(0), day(1), day(2), day(3)},
		rows: []models.AbsenceRow{
			// Absent on the three older dates but present on the newest.
			{StudentID: "st1", Date: day(1)},
			{StudentID: "st1", Date: day(2)},
			{StudentID: "st1", Date: day(3)},
		},
	}
	svc := alertFixture(records, models.Student{ID: "st1", Name: "Carlos Pérez"})

	alerts, err := svc.Alerts(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertsBelowThresholdNotFlagged(t *testing.T) {
	records := alertRecordsStub{
		dates: []time.Time{day(0), day(1), day(2)},
		rows: []models.AbsenceRow{
			{StudentID: "st1", Date: day(0)},
			{StudentID: "st1", Date: day(1)},
		},
	}
	svc := alertFixture(records, models.Student{ID: "st1", Name: "Carlos Pérez"})

	alerts, err := svc.Alerts(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertsRequiresCourseID(t *testing.T) {
	svc := alertFixture(alertRecordsStub{})
	_, err := svc.Alerts(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestSummaryPercentageRoundedAndClamped(t *testing.T) {
	records := alertRecordsStub{
		sessions: 3,
		rows: []models.AbsenceRow{
			{StudentID: "st1", Date: day(0)},
			{StudentID: "st2", Date: day(0)},
			{StudentID: "st2", Date: day(1)},
			{StudentID: "st2", Date: day(2)},
			{StudentID: "st2", Date: day(3)},
		},
	}
	svc := alertFixture(records,
		models.Student{ID: "st1", Name: "Carlos Pérez"},
		models.Student{ID: "st2", Name: "Laura Díaz"},
		models.Student{ID: "st3", Name: "Pedro Ruiz"},
	)

	summaries, err := svc.Summary(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// (3-1)/3 = 66.67 rounds to 67.
	assert.Equal(t, 67, summaries[0].Percentage)
	// More absences than sessions clamps to zero.
	assert.Equal(t, 0, summaries[1].Percentage)
	// No absences at all.
	assert.Equal(t, 100, summaries[2].Percentage)
}

func TestSummaryWithoutSessionsDefaultsToFull(t *testing.T) {
	svc := alertFixture(alertRecordsStub{}, models.Student{ID: "st1", Name: "Carlos Pérez"})

	summaries, err := svc.Summary(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].Sessions)
	assert.Equal(t, 100, summaries[0].Percentage)
}
