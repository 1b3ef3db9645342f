package models

import "time"

// Resource is a self-help article, video or link curated by admins.
type Resource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Type        string    `gorm:"size:50;not null" json:"type"`
	URL         string    `gorm:"size:2048" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	Content     string    `gorm:"type:text" json:"content"`
	Tags        string    `gorm:"size:500" json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
