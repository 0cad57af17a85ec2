package validation

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Validation rule patterns
var (
	// Username pattern - letters, digits and . _ -
	UsernamePattern = `^[A-Za-z0-9._\-]+$`

	// Password min length
	PasswordMinLength = 8

	// Username min/max length
	UsernameMinLength = 3
	UsernameMaxLength = 50

	// Course field limits
	CourseTitleMaxLength       = 200
	CourseDescriptionMaxLength = 2000
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
}

// IsStrongPassword reports whether the password has at least PasswordMinLength
// characters and contains an uppercase letter, a lowercase letter and a digit.
func IsStrongPassword(password string) bool {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length in characters
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length in characters
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	length := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && length < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// IsValidUsername checks the username length and character set
func IsValidUsername(username string) bool {
	return NewStringValidation(username).
		WithMinLength(UsernameMinLength).
		WithMaxLength(UsernameMaxLength).
		WithPattern(CompiledPatterns.Username).
		Validate()
}

// IsValidCourseTitle checks a course title is present and within limits
func IsValidCourseTitle(title string) bool {
	return NewStringValidation(title).
		WithMinLength(1).
		WithMaxLength(CourseTitleMaxLength).
		Validate()
}

// IsValidCourseDescription checks an optional course description
func IsValidCourseDescription(description string) bool {
	return NewStringValidation(description).
		WithRequired(false).
		WithMaxLength(CourseDescriptionMaxLength).
		Validate()
}
