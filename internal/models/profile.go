package models

import "time"

// Profile holds per-user public info. OnlineStatus is a denormalized mirror
// of the presence cache: written on login/heartbeat, lazily cleared when a
// presence lookup finds it stale. It is never the source of truth for
// online/offline decisions.
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Prefix       string    `gorm:"size:255;uniqueIndex;not null" json:"prefix"`
	About        string    `gorm:"size:500" json:"about"`
	OnlineStatus bool      `gorm:"default:false" json:"online_status"`
	Avatar       string    `gorm:"size:255" json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
