package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo holds appointments in memory and applies the same filtering the
// real repository does: non-cancelled, same party, excludeID skipped.
type fakeRepo struct {
	appointments []models.Appointment
}

func (f *fakeRepo) FindOverlappingForTherapist(_ context.Context, therapistID uint, _, _ time.Time, excludeID uint) ([]models.Appointment, error) {
	return f.filter(func(a *models.Appointment) bool { return a.TherapistID == therapistID }, excludeID), nil
}

func (f *fakeRepo) FindOverlappingForPatient(_ context.Context, userID uint, _, _ time.Time, excludeID uint) ([]models.Appointment, error) {
	return f.filter(func(a *models.Appointment) bool { return a.UserID == userID }, excludeID), nil
}

func (f *fakeRepo) filter(match func(*models.Appointment) bool, excludeID uint) []models.Appointment {
	var out []models.Appointment
	for i := range f.appointments {
		a := &f.appointments[i]
		if a.Status == models.AppointmentCancelled {
			continue
		}
		if excludeID != 0 && a.ID == excludeID {
			continue
		}
		if match(a) {
			out = append(out, *a)
		}
	}
	return out
}

var day = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func booked(id, userID, therapistID uint, start time.Time, minutes int, status string) models.Appointment {
	return models.Appointment{
		ID:              id,
		UserID:          userID,
		TherapistID:     therapistID,
		AppointmentAt:   start,
		DurationMinutes: minutes,
		Status:          status,
	}
}

func TestCheck_FreeSlot(t *testing.T) {
	det := NewDetector(&fakeRepo{})

	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 1, TherapistID: 1, StartAt: at(10, 0), DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestCheck_TherapistOverlapRejected(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(1, 7, 3, at(10, 0), 60, models.AppointmentConfirmed),
	}}
	det := NewDetector(repo)

	// different patient, same therapist, half an hour into the first booking
	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 9, TherapistID: 3, StartAt: at(10, 30), DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, PartyTherapist, conflict.Party)
	assert.Equal(t, uint(1), conflict.AppointmentID)
	assert.Contains(t, conflict.Message(), "therapist")
}

func TestCheck_PatientOverlapRejected(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(1, 7, 3, at(10, 0), 60, models.AppointmentConfirmed),
	}}
	det := NewDetector(repo)

	// same patient, different therapist, overlapping window
	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 5, StartAt: at(10, 30), DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, PartyPatient, conflict.Party)
	assert.Contains(t, conflict.Message(), "patient")
}

func TestCheck_TherapistSideReportedFirst(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(1, 7, 3, at(10, 0), 60, models.AppointmentConfirmed),
	}}
	det := NewDetector(repo)

	// same patient AND same therapist both conflict; therapist wins
	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 3, StartAt: at(10, 15), DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, PartyTherapist, conflict.Party)
}

func TestCheck_AdjacentSlotsAllowed(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(1, 7, 3, at(10, 0), 60, models.AppointmentConfirmed),
	}}
	det := NewDetector(repo)

	// back-to-back before and after do not overlap
	before, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 3, StartAt: at(9, 0), DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Nil(t, before)

	after, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 3, StartAt: at(11, 0), DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestCheck_CancelledFreesSlot(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(1, 7, 3, at(10, 0), 60, models.AppointmentCancelled),
	}}
	det := NewDetector(repo)

	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 3, StartAt: at(10, 0), DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestCheck_ExcludesSelfOnReschedule(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(42, 7, 3, at(10, 0), 60, models.AppointmentConfirmed),
	}}
	det := NewDetector(repo)

	// editing appointment 42 within its own window is not a conflict
	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 3, StartAt: at(10, 15), DurationMinutes: 30, ExcludeID: 42,
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestCheck_DefaultDurationIsSixtyMinutes(t *testing.T) {
	repo := &fakeRepo{appointments: []models.Appointment{
		booked(1, 7, 3, at(10, 45), 30, models.AppointmentConfirmed),
	}}
	det := NewDetector(repo)

	// zero duration means 60 minutes, so 10:00 reaches into the 10:45 booking
	conflict, err := det.Check(context.Background(), Candidate{
		UserID: 7, TherapistID: 3, StartAt: at(10, 0),
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
}

func TestCheck_BookingScenario(t *testing.T) {
	repo := &fakeRepo{}
	det := NewDetector(repo)
	ctx := context.Background()

	// P7 with T3 at 10:00 for 60 minutes books fine
	first := Candidate{UserID: 7, TherapistID: 3, StartAt: at(10, 0), DurationMinutes: 60}
	conflict, err := det.Check(ctx, first)
	require.NoError(t, err)
	require.Nil(t, conflict)
	repo.appointments = append(repo.appointments,
		booked(1, first.UserID, first.TherapistID, first.StartAt, first.DurationMinutes, models.AppointmentPending))

	// P9 with T3 at 10:30 for 30 minutes hits the therapist's calendar
	conflict, err = det.Check(ctx, Candidate{UserID: 9, TherapistID: 3, StartAt: at(10, 30), DurationMinutes: 30})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, PartyTherapist, conflict.Party)

	// P9 with T3 at 11:00 for 30 minutes is adjacent and books fine
	conflict, err = det.Check(ctx, Candidate{UserID: 9, TherapistID: 3, StartAt: at(11, 0), DurationMinutes: 30})
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"contained", at(10, 0), at(11, 0), at(10, 15), at(10, 45), true},
		{"partial front", at(10, 0), at(11, 0), at(9, 30), at(10, 30), true},
		{"partial back", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"adjacent before", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"adjacent after", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"disjoint", at(10, 0), at(11, 0), at(13, 0), at(14, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// symmetric by construction
			assert.Equal(t, tt.want, overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestCandidate_WindowDefaultsDuration(t *testing.T) {
	start, end := Candidate{StartAt: at(10, 0)}.Window()
	assert.Equal(t, at(10, 0), start)
	assert.Equal(t, at(11, 0), end)
}
