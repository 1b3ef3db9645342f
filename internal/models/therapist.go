package models

import "time"

// Therapist represents a licensed therapist managed by admins.
type Therapist struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	PhoneNumber string    `gorm:"size:20;not null" json:"phone_number"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Specialty   string    `gorm:"size:255;not null" json:"specialty"`
	Bio         string    `gorm:"size:1000" json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Appointments []Appointment `json:"-"`
}
