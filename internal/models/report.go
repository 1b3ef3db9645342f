package models

import "time"

// Report is a moderation report filed by a user. ReportedUserID survives the
// deletion of the reported account (SET NULL) so the report history stays
// intact for moderators.
type Report struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReporterID     uint      `gorm:"not null;index" json:"reporter_id"`
	ReportedUserID *uint     `gorm:"index" json:"reported_user_id"`
	MessageID      *uint     `json:"message_id"`
	GroupID        *uint     `json:"group_id"`
	Reason         string    `gorm:"size:255;not null" json:"reason"`
	Details        string    `gorm:"size:1000" json:"details"`
	Resolved       bool      `gorm:"default:false" json:"resolved"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Reporter     *User    `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter,omitempty"`
	ReportedUser *User    `gorm:"foreignKey:ReportedUserID;constraint:OnDelete:SET NULL" json:"reported_user,omitempty"`
	Message      *Message `gorm:"constraint:OnDelete:CASCADE" json:"message,omitempty"`
	Group        *Group   `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
}
