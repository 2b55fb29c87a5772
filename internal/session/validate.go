package session

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"askida/internal/apiclient"
	"askida/internal/domain"
)

const (
	minNameLength     = 3
	minPasswordLength = 6
	// bcrypt only looks at the first 72 bytes.
	maxPasswordLength = 72
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\-()]{10,}$`)
)

// ValidateRegistration runs the sign-up form checks. confirm must equal the password.
func ValidateRegistration(req apiclient.RegisterRequest, confirm string) error {
	name := strings.TrimSpace(req.FullName)
	switch {
	case name == "":
		return domain.Invalid("full_name", "full name is required")
	case utf8.RuneCountInString(name) < minNameLength:
		return domain.Invalid("full_name", "full name must be at least 3 characters")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	switch {
	case req.Password == "":
		return domain.Invalid("password", "password is required")
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		return domain.Invalid("password", "password must be at least 6 characters")
	case len(req.Password) > maxPasswordLength:
		return domain.Invalid("password", "password must be at most 72 bytes")
	case req.Password != confirm:
		return domain.Invalid("password", "passwords do not match")
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return domain.Invalid("phone_number", "phone number is required")
	}
	if !phonePattern.MatchString(strings.Join(strings.Fields(phone), "")) {
		return domain.Invalid("phone_number", "enter a valid phone number")
	}
	if _, err := domain.ParseRole(string(req.Role)); err != nil {
		return err
	}
	return nil
}

// ValidateLogin runs the sign-in form checks.
func ValidateLogin(req apiclient.LoginRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if req.Password == "" {
		return domain.Invalid("password", "password is required")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Invalid("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return domain.Invalid("email", "enter a valid email address")
	}
	return nil
}
