package models

import "time"

// Notification types used by the fan-out paths.
const (
	NotificationNewMessage        = "new_message"
	NotificationAppointmentBooked = "appointment_booked"
)

// Notification is a per-user in-app notification.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	Title     string     `gorm:"size:255" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Read      bool       `gorm:"default:false;index" json:"read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
