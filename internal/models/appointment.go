package models

import "time"

// Appointment statuses. Cancelled appointments never count toward
// scheduling conflicts.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment creation origins.
const (
	CreatedByUser   = "user"
	CreatedByAdmin  = "admin"
	CreatedBySystem = "system"
)

// Duration bounds in minutes.
const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 240
	DefaultDurationMinutes = 60
)

// Appointment is one scheduled session between a user (patient) and a
// therapist. The booked interval is [AppointmentAt, AppointmentAt+Duration).
type Appointment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index:idx_appointments_user_at" json:"user_id"`
	TherapistID     uint      `gorm:"not null;index:idx_appointments_therapist_at" json:"therapist_id"`
	AppointmentAt   time.Time `gorm:"not null;index:idx_appointments_user_at;index:idx_appointments_therapist_at" json:"appointment_at"`
	DurationMinutes int       `gorm:"not null;default:60" json:"duration_minutes"`
	Status          string    `gorm:"size:32;not null;index" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedBy       string    `gorm:"size:16;not null;default:user" json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User      *User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Therapist *Therapist `gorm:"constraint:OnDelete:CASCADE" json:"therapist,omitempty"`
}

// Duration returns the booked length, defaulting to 60 minutes when unset.
func (a *Appointment) Duration() time.Duration {
	m := a.DurationMinutes
	if m <= 0 {
		m = DefaultDurationMinutes
	}
	return time.Duration(m) * time.Minute
}

// EndAt returns the exclusive end instant of the booked interval.
func (a *Appointment) EndAt() time.Time {
	return a.AppointmentAt.Add(a.Duration())
}
