// Package contact validates contact form submissions and keeps them in an
// append-only log.
package contact

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"abbaytv/portal/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{10,}$`)
)

// Form is a contact submission as entered.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ValidationError is a problem with the submission that the sender can fix.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Trimmed returns the form with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate checks the trimmed form. Checks run in order and the first failure
// is returned.
func Validate(f Form) error {
	f = f.Trimmed()

	if f.Name == "" || f.Email == "" || f.Message == "" {
		return &ValidationError{Message: "Please fill in all required fields"}
	}
	if !emailPattern.MatchString(f.Email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if f.Phone != "" && !phonePattern.MatchString(f.Phone) {
		return &ValidationError{Field: "phone", Message: "Please enter a valid phone number"}
	}
	return nil
}

// NewMessage validates the form and stamps it as a new message received at now.
func NewMessage(f Form, now time.Time) (*models.ContactMessage, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	f = f.Trimmed()

	return &models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Subject:   f.Subject,
		Message:   f.Message,
		Date:      now.UTC().Format(time.RFC3339),
		Status:    models.ContactMessageStatusNew,
		CreatedAt: now.UTC(),
	}, nil
}
