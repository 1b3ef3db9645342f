package presence

import (
	"context"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"gorm.io/gorm"
)

// GormProfileMirror writes the denormalized online_status flag on profiles.
type GormProfileMirror struct {
	db *gorm.DB
}

func NewGormProfileMirror(db *gorm.DB) *GormProfileMirror {
	return &GormProfileMirror{db: db}
}

func (m *GormProfileMirror) SetOnline(ctx context.Context, userID uint, online bool) error {
	return m.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("online_status", online).Error
}
