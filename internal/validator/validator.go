package validator

import (
	"errors"
	"regexp"
	"strings"

	"remittance/internal/policy"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	ErrInvalidRole     = errors.New("role must be admin, cashier or manager")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || len(name) > 100 {
		return ErrInvalidName
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateRole(role string) error {
	if !policy.Role(role).Valid() {
		return ErrInvalidRole
	}
	return nil
}

// NormalizeEmail lowercases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
