package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVisit(t *testing.T, date time.Time) *scheduling.Appointment {
	t.Helper()

	appointment, err := scheduling.NewAppointment(uuid.New(), "Contrôle CPAP", date, "Cabinet")
	require.NoError(t, err)
	return appointment
}

func TestGormAppointmentRepository_FindOpenBefore(t *testing.T) {
	repo := NewGormAppointmentRepository(setupTestDB(t))
	ctx := context.Background()

	cutoff := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	scheduled := newVisit(t, cutoff.AddDate(0, 0, -2))
	require.NoError(t, repo.Save(ctx, scheduled))

	confirmed := newVisit(t, cutoff.AddDate(0, 0, -1))
	require.NoError(t, confirmed.Confirm())
	require.NoError(t, repo.Save(ctx, confirmed))

	done := newVisit(t, cutoff.AddDate(0, 0, -3))
	require.NoError(t, done.MarkDone())
	require.NoError(t, repo.Save(ctx, done))

	future := newVisit(t, cutoff.AddDate(0, 0, 3))
	require.NoError(t, repo.Save(ctx, future))

	appointments, err := repo.FindOpenBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, scheduled.ID, appointments[0].ID)
	assert.Equal(t, confirmed.ID, appointments[1].ID)
}

func TestGormAppointmentRepository_FindAll(t *testing.T) {
	repo := NewGormAppointmentRepository(setupTestDB(t))
	ctx := context.Background()

	date := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	appointment := newVisit(t, date)
	require.NoError(t, repo.Save(ctx, appointment))
	require.NoError(t, repo.Save(ctx, newVisit(t, date.AddDate(0, 1, 0))))

	t.Run("filters by patient", func(t *testing.T) {
		appointments, total, err := repo.FindAll(ctx, scheduling.AppointmentFilter{PatientID: &appointment.PatientID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, appointments, 1)
		assert.Equal(t, appointment.ID, appointments[0].ID)
	})

	t.Run("filters by window", func(t *testing.T) {
		from := date.AddDate(0, 0, -1)
		to := date.AddDate(0, 0, 1)
		_, total, err := repo.FindAll(ctx, scheduling.AppointmentFilter{From: &from, To: &to})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := scheduling.AppointmentStatusScheduled
		_, total, err := repo.FindAll(ctx, scheduling.AppointmentFilter{Status: &status})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})
}
