package models

import "time"

// Group is a support-group chat room owned by one user.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Icon      string    `gorm:"size:255" json:"icon"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner    *User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Users    []User         `gorm:"many2many:group_user" json:"users,omitempty"`
	Messages []GroupMessage `json:"-"`
	Reports  []Report       `json:"-"`
}

// GroupUser is the membership pivot with per-member read state.
type GroupUser struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	GroupID    uint       `gorm:"not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_group_user" json:"user_id"`
	LastReadAt *time.Time `json:"last_read_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Group *Group `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User  *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (GroupUser) TableName() string { return "group_user" }

// GroupMessage is a message posted in a group.
type GroupMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Message   string    `gorm:"size:5000;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Group *Group `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User  *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
