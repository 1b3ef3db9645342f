package models

import "time"

// User represents an application user (patient side of the platform).
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile       *Profile       `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Appointments  []Appointment  `json:"-"`
	Conversations []Conversation `gorm:"many2many:conversation_user" json:"-"`
	Groups        []Group        `gorm:"many2many:group_user" json:"-"`
	Notifications []Notification `json:"-"`
	AIMessages    []AIMessage    `json:"-"`
}
