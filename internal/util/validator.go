package util

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ValidateEmail checks basic address syntax.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	return nil
}

// ValidatePassword enforces the minimum length used at registration.
func ValidatePassword(pwd string) error {
	if len(pwd) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(pwd) > 72 { // bcrypt input limit
		return fmt.Errorf("password too long")
	}
	return nil
}

// ValidateStatus checks a presence status value.
func ValidateStatus(status string) error {
	switch status {
	case "online", "offline", "away":
		return nil
	}
	return fmt.Errorf("status must be one of online, offline, away")
}

// ParseAppointmentTime accepts the datetime layouts clients send.
func ParseAppointmentTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("appointment time is empty")
	}
	layouts := []string{
		time.RFC3339,          // 2025-01-10T10:00:00+03:00
		"2006-01-02T15:04:05", // 2025-01-10T10:00:00
		"2006-01-02 15:04:05", // 2025-01-10 10:00:00
		"2006-01-02T15:04",    // 2025-01-10T10:00
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime format: %q", s)
}
