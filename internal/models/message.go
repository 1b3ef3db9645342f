package models

import "time"

// Message is a single direct message inside a conversation.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Message        string    `gorm:"size:5000;not null" json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Conversation *Conversation `gorm:"constraint:OnDelete:CASCADE" json:"conversation,omitempty"`
	User         *User         `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
