package util

import (
	"testing"
	"time"
)

func TestValidateEmail_Valid(t *testing.T) {
	testCases := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"u+tag@example.co.ke",
	}

	for _, email := range testCases {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) error = %v, want nil", email, err)
		}
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"not-an-email",
		"@example.com",
		"user@",
	}

	for _, email := range testCases {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) error = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("ValidatePassword(longenough) error = %v, want nil", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("ValidatePassword(short) error = nil, want error")
	}
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidatePassword(string(long)); err == nil {
		t.Error("ValidatePassword(73 chars) error = nil, want error")
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range []string{"online", "offline", "away"} {
		if err := ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%q) error = %v, want nil", s, err)
		}
	}
	for _, s := range []string{"", "busy", "ONLINE"} {
		if err := ValidateStatus(s); err == nil {
			t.Errorf("ValidateStatus(%q) error = nil, want error", s)
		}
	}
}

func TestParseAppointmentTime_Layouts(t *testing.T) {
	testCases := []string{
		"2025-01-10T10:00:00+03:00",
		"2025-01-10T10:00:00",
		"2025-01-10 10:00:00",
		"2025-01-10T10:00",
	}

	for _, s := range testCases {
		got, err := ParseAppointmentTime(s)
		if err != nil {
			t.Errorf("ParseAppointmentTime(%q) error = %v, want nil", s, err)
			continue
		}
		if got.Year() != 2025 || got.Month() != time.January || got.Day() != 10 || got.Hour() != 10 {
			t.Errorf("ParseAppointmentTime(%q) = %v, wrong instant", s, got)
		}
	}
}

func TestParseAppointmentTime_Invalid(t *testing.T) {
	for _, s := range []string{"", "tomorrow", "10/01/2025"} {
		if _, err := ParseAppointmentTime(s); err == nil {
			t.Errorf("ParseAppointmentTime(%q) error = nil, want error", s)
		}
	}
}
