package scheduling

import (
	"context"
	"errors"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"gorm.io/gorm"
)

var errConflict = errors.New("scheduling conflict")

// Service runs the conflict check and the write in one transaction, so two
// concurrent booking requests for the same slot cannot both pass the check
// before either commits.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Book validates the appointment against both calendars and creates it.
// A non-nil Conflict means the booking was rejected and nothing was written.
func (s *Service) Book(ctx context.Context, appt *models.Appointment) (*Conflict, error) {
	return s.commit(ctx, appt, 0, func(tx *gorm.DB) error {
		return tx.Create(appt).Error
	})
}

// Reschedule revalidates an existing appointment after edits, excluding the
// appointment from its own conflict set, and saves it.
func (s *Service) Reschedule(ctx context.Context, appt *models.Appointment) (*Conflict, error) {
	return s.commit(ctx, appt, appt.ID, func(tx *gorm.DB) error {
		return tx.Save(appt).Error
	})
}

func (s *Service) commit(ctx context.Context, appt *models.Appointment, excludeID uint, write func(tx *gorm.DB) error) (*Conflict, error) {
	if appt.DurationMinutes <= 0 {
		appt.DurationMinutes = models.DefaultDurationMinutes
	}

	var conflict *Conflict
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		det := NewDetector(NewGormAppointmentRepository(tx))
		c, err := det.Check(ctx, Candidate{
			UserID:          appt.UserID,
			TherapistID:     appt.TherapistID,
			StartAt:         appt.AppointmentAt,
			DurationMinutes: appt.DurationMinutes,
			ExcludeID:       excludeID,
		})
		if err != nil {
			return err
		}
		if c != nil {
			conflict = c
			return errConflict
		}
		return write(tx)
	})

	if errors.Is(err, errConflict) {
		return conflict, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}
