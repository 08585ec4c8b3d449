// Package intake checks contact form candidates before anything is stored.
package intake

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxMessageLength is the message limit in characters.
const DefaultMaxMessageLength = 5000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError lists the fields that rejected a candidate.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing field: " + strings.Join(e.Missing, ", ")
	}
	return "invalid field: " + strings.Join(e.Invalid, ", ")
}

// IsMissing reports whether the error is about absent fields.
func (e *ValidationError) IsMissing() bool {
	return len(e.Missing) > 0
}

// HasInvalid reports whether field was present but malformed.
func (e *ValidationError) HasInvalid(field string) bool {
	for _, f := range e.Invalid {
		if f == field {
			return true
		}
	}
	return false
}

// Validator checks name, email and message of a contact form.
// The zero value only checks presence.
type Validator struct {
	CheckEmailFormat bool
	MaxMessageLength int
}

// NewValidator returns a Validator with the email format check and the default length limit.
func NewValidator() Validator {
	return Validator{CheckEmailFormat: true, MaxMessageLength: DefaultMaxMessageLength}
}

// Validate returns nil or a *ValidationError. Missing fields are reported
// without looking at the format of the others.
func (v Validator) Validate(name, email, message string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	var verr ValidationError
	if name == "" {
		verr.Missing = append(verr.Missing, "name")
	}
	if email == "" {
		verr.Missing = append(verr.Missing, "email")
	}
	if message == "" {
		verr.Missing = append(verr.Missing, "message")
	}
	if len(verr.Missing) > 0 {
		return &verr
	}

	if v.CheckEmailFormat && !ValidEmail(email) {
		verr.Invalid = append(verr.Invalid, "email")
	}
	if v.MaxMessageLength > 0 && utf8.RuneCountInString(message) > v.MaxMessageLength {
		verr.Invalid = append(verr.Invalid, "message")
	}
	if len(verr.Invalid) > 0 {
		return &verr
	}
	return nil
}

// ValidEmail reports whether s looks like local@domain.tld with no whitespace.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
