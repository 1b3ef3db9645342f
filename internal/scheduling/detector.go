package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"
)

// Party identifies whose calendar a conflict was found on.
type Party string

const (
	PartyTherapist Party = "therapist"
	PartyPatient   Party = "patient"
)

// Candidate is a proposed appointment to validate. ExcludeID is the id of the
// appointment being edited, so it does not conflict with itself; zero means
// no exclusion.
type Candidate struct {
	UserID          uint
	TherapistID     uint
	StartAt         time.Time
	DurationMinutes int
	ExcludeID       uint
}

// Window returns the half-open booked interval [start, end), defaulting the
// duration to 60 minutes when unset.
func (c Candidate) Window() (time.Time, time.Time) {
	m := c.DurationMinutes
	if m <= 0 {
		m = models.DefaultDurationMinutes
	}
	return c.StartAt, c.StartAt.Add(time.Duration(m) * time.Minute)
}

// Conflict reports an overlapping non-cancelled booking.
type Conflict struct {
	Party         Party
	AppointmentID uint
}

// Message returns the user-facing conflict description.
func (c *Conflict) Message() string {
	if c.Party == PartyTherapist {
		return "The therapist already has an appointment during this time. Please choose a different time slot."
	}
	return "The patient already has an appointment scheduled during this time. Please choose a different time slot."
}

// AppointmentRepository is the persistence view the detector needs: the
// non-cancelled bookings of one party that could overlap the given window,
// excluding excludeID. Implementations may over-approximate (return extra
// rows near the window); the detector applies the precise interval test.
type AppointmentRepository interface {
	FindOverlappingForTherapist(ctx context.Context, therapistID uint, start, end time.Time, excludeID uint) ([]models.Appointment, error)
	FindOverlappingForPatient(ctx context.Context, userID uint, start, end time.Time, excludeID uint) ([]models.Appointment, error)
}

// Detector decides whether a candidate appointment would violate the
// non-overlap invariant for either participant. It is a pure query: the
// caller persists the appointment only after a nil Conflict.
type Detector struct {
	repo AppointmentRepository
}

func NewDetector(repo AppointmentRepository) *Detector {
	return &Detector{repo: repo}
}

// Check returns the first conflict found, therapist side first, or nil when
// the slot is free for both parties.
func (d *Detector) Check(ctx context.Context, cand Candidate) (*Conflict, error) {
	start, end := cand.Window()

	existing, err := d.repo.FindOverlappingForTherapist(ctx, cand.TherapistID, start, end, cand.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("query therapist bookings: %w", err)
	}
	if a := firstOverlap(existing, start, end); a != nil {
		return &Conflict{Party: PartyTherapist, AppointmentID: a.ID}, nil
	}

	existing, err = d.repo.FindOverlappingForPatient(ctx, cand.UserID, start, end, cand.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("query patient bookings: %w", err)
	}
	if a := firstOverlap(existing, start, end); a != nil {
		return &Conflict{Party: PartyPatient, AppointmentID: a.ID}, nil
	}

	return nil, nil
}

func firstOverlap(existing []models.Appointment, start, end time.Time) *models.Appointment {
	for i := range existing {
		a := &existing[i]
		if overlaps(start, end, a.AppointmentAt, a.EndAt()) {
			return a
		}
	}
	return nil
}

// overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
