package auth

import (
	"net/mail"
	"regexp"
	"sort"
	"strings"
)

// Sign-up field constraints.
const (
	nameMinLength     = 2
	nameMaxLength     = 100
	emailMaxLength    = 255
	passwordMinLength = 8
	passwordMaxLength = 128
)

var (
	nameRegex     = regexp.MustCompile(`^[a-zA-Z\s'.-]+$`)
	referralRegex = regexp.MustCompile(`^[a-z0-9]{6,12}$`)
)

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// ValidationError carries field-level messages for malformed input. The
// caller can correct the input and retry.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignUp checks the shape of a registration request and returns a
// *ValidationError listing every failing field, or nil when valid.
func ValidateSignUp(name, email, password, confirmPassword, referralCode string) error {
	fields := FieldErrors{}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		fields["name"] = "Full name is required"
	case len(name) < nameMinLength:
		fields["name"] = "Full name must be at least 2 characters"
	case len(name) > nameMaxLength:
		fields["name"] = "Full name is too long"
	case !nameRegex.MatchString(name):
		fields["name"] = "Full name can only contain letters, spaces, apostrophes, hyphens, and periods"
	}

	normalized := NormalizeEmail(email)
	switch {
	case normalized == "":
		fields["email"] = "Email is required"
	case len(normalized) > emailMaxLength:
		fields["email"] = "Email is too long"
	default:
		if _, err := mail.ParseAddress(normalized); err != nil {
			fields["email"] = "Please enter a valid email address"
		}
	}

	switch {
	case password == "":
		fields["password"] = "Password is required"
	case len(password) < passwordMinLength:
		fields["password"] = "Password must be at least 8 characters"
	case len(password) > passwordMaxLength:
		fields["password"] = "Password is too long"
	}

	switch {
	case confirmPassword == "":
		fields["confirmPassword"] = "Please confirm your password"
	case confirmPassword != password:
		fields["confirmPassword"] = "Passwords do not match"
	}

	if referralCode != "" && !referralRegex.MatchString(referralCode) {
		fields["referralCode"] = "Referral code must be 6-12 characters long and contain only lowercase letters and numbers"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
