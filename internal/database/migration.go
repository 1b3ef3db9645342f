package database

import (
	"fmt"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Therapist{},
		&models.Appointment{},
		&models.Conversation{},
		&models.ConversationUser{},
		&models.Message{},
		&models.Group{},
		&models.GroupUser{},
		&models.GroupMessage{},
		&models.Notification{},
		&models.Report{},
		&models.Resource{},
		&models.AIMessage{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
