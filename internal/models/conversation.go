package models

import "time"

// Conversation is a direct-message thread; participants are attached through
// the conversation_user pivot.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participants []User    `gorm:"many2many:conversation_user" json:"participants,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
}

// ConversationUser is the participant pivot. LastReadAt backs the
// mark-read / unread-count features.
type ConversationUser struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;uniqueIndex:idx_conversation_user" json:"conversation_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_conversation_user" json:"user_id"`
	LastReadAt     *time.Time `json:"last_read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Conversation *Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User         *User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the pivot name gorm's many2many tag expects.
func (ConversationUser) TableName() string { return "conversation_user" }
