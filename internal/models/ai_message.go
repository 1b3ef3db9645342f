package models

import (
	"time"

	"gorm.io/datatypes"
)

// AIMessage is one prompt/response exchange with the AI companion. Meta keeps
// provider bookkeeping (model, finish reason, token usage).
type AIMessage struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	ConversationID *uint          `gorm:"index" json:"conversation_id"`
	Prompt         string         `gorm:"type:text;not null" json:"prompt"`
	Response       string         `gorm:"type:text;not null" json:"response"`
	Meta           datatypes.JSON `json:"meta"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	User         *User         `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Conversation *Conversation `gorm:"constraint:OnDelete:SET NULL" json:"conversation,omitempty"`
}
