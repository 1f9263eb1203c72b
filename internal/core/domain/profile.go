package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Profile holds the registration data of one chat user.
type Profile struct {
	UserID     int64
	FirstName  string
	LastName   string
	Phone      string
	Specialty  string
	Experience Experience
	Username   string
	RefSource  string
	UpdatedAt  time.Time
}

// Specialties offered as buttons. Any other value is accepted as free text.
var Specialties = []string{"Зварювальник", "Муляр", "Монолітник", "Арматурник"}

// Experience is a bucketed length of service.
type Experience string

// Experience buckets.
const (
	ExperienceUnderOne  Experience = "<1"
	ExperienceOneTwo    Experience = "1-2"
	ExperienceThreeFive Experience = "3-5"
	ExperienceOverFive  Experience = ">5"
)

// IsValid returns true if the bucket is recognised.
func (e Experience) IsValid() bool {
	switch e {
	case ExperienceUnderOne, ExperienceOneTwo, ExperienceThreeFive, ExperienceOverFive:
		return true
	default:
		return false
	}
}

// Label returns the human-readable bucket.
func (e Experience) Label() string {
	switch e {
	case ExperienceUnderOne:
		return "<1 року"
	case ExperienceOneTwo:
		return "1–2 роки"
	case ExperienceThreeFive:
		return "3–5 років"
	case ExperienceOverFive:
		return ">5 років"
	default:
		return string(e)
	}
}

// AllExperiences returns the buckets in display order.
func AllExperiences() []Experience {
	return []Experience{ExperienceUnderOne, ExperienceOneTwo, ExperienceThreeFive, ExperienceOverFive}
}

// Menu button labels. They must never be accepted as field values.
const (
	ButtonProfile       = "📋 Профіль"
	ButtonUpdateProfile = "✏️ Оновити анкету"
	ButtonCourse        = "💪 Навчальний курс"
)

// IsMenuButton reports whether s is one of the menu button labels.
func IsMenuButton(s string) bool {
	return s == ButtonProfile || s == ButtonUpdateProfile || s == ButtonCourse
}

// ValidateName checks a first or last name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if IsMenuButton(name) || utf8.RuneCountInString(name) < 2 {
		return fmt.Errorf("%w: name must have at least 2 letters", ErrInvalidInput)
	}
	return nil
}

const forbiddenSpecialtyChars = "!@#$%^&*(){}[]<>"

// ValidateSpecialty checks a free-text specialty.
func ValidateSpecialty(s string) error {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 2 || strings.ContainsAny(s, forbiddenSpecialtyChars) {
		return fmt.Errorf("%w: specialty must have at least 2 letters and no special characters", ErrInvalidInput)
	}
	if IsMenuButton(s) {
		return fmt.Errorf("%w: specialty looks like a button", ErrInvalidInput)
	}
	return nil
}

var mobileCodes = map[string]bool{
	"39": true, "50": true, "63": true, "66": true, "67": true, "68": true, "73": true,
	"91": true, "92": true, "93": true, "94": true, "95": true, "96": true, "97": true,
	"98": true, "99": true,
}

// NormalisePhone converts a typed Ukrainian phone number to +380XXXXXXXXX.
func NormalisePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return "+380" + digits[1:], nil
	case len(digits) == 12 && strings.HasPrefix(digits, "380"):
		return "+" + digits, nil
	case len(digits) == 9 && mobileCodes[digits[:2]]:
		return "+380" + digits, nil
	default:
		return "", fmt.Errorf("%w: unrecognised phone number", ErrInvalidInput)
	}
}

// NormaliseContactPhone normalises a number shared as a contact card.
func NormaliseContactPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	return "+" + raw
}
