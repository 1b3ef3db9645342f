package scheduling

import (
	"context"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"gorm.io/gorm"
)

// GormAppointmentRepository implements AppointmentRepository on gorm.
type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) FindOverlappingForTherapist(ctx context.Context, therapistID uint, start, end time.Time, excludeID uint) ([]models.Appointment, error) {
	return r.find(ctx, "therapist_id = ?", therapistID, start, end, excludeID)
}

func (r *GormAppointmentRepository) FindOverlappingForPatient(ctx context.Context, userID uint, start, end time.Time, excludeID uint) ([]models.Appointment, error) {
	return r.find(ctx, "user_id = ?", userID, start, end, excludeID)
}

// find over-approximates: any booking starting before the window ends and no
// earlier than the maximum duration before it starts could overlap. The
// detector applies the exact half-open test on the rows returned.
func (r *GormAppointmentRepository) find(ctx context.Context, partyCond string, partyID uint, start, end time.Time, excludeID uint) ([]models.Appointment, error) {
	earliest := start.Add(-time.Duration(models.MaxDurationMinutes) * time.Minute)

	q := r.db.WithContext(ctx).
		Where(partyCond, partyID).
		Where("status != ?", models.AppointmentCancelled).
		Where("appointment_at < ? AND appointment_at > ?", end, earliest)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}

	var out []models.Appointment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
