// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"unicode/utf8"
)

// Form fields that password validation errors are attached to.
const (
	FieldPassword     = "password"
	FieldConfirmation = "confirmation"
)

// PasswordValidator validates passwords against the account password policy.
type PasswordValidator struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
}

// DefaultPasswordValidator returns the staff password policy: 8 to 15
// characters with at least one lowercase letter, uppercase letter and digit.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:        8,
		MaxLength:        15,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
	}
}

// ValidationError represents a single field-scoped validation error.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors.
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Messages returns all error messages.
func (e *PasswordValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return messages
}

// Fields groups the errors by form field.
func (e *PasswordValidationError) Fields() map[string][]ValidationError {
	fields := make(map[string][]ValidationError)
	for _, err := range e.Errors {
		fields[err.Field] = append(fields[err.Field], err)
	}
	return fields
}

// ValidationResult holds all validation errors.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Err returns the result as an error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &PasswordValidationError{Errors: r.Errors}
}

// Validate checks a password against the configured policy.
func (v *PasswordValidator) Validate(password string) ValidationResult {
	var errors []ValidationError

	length := utf8.RuneCountInString(password)
	switch {
	case length < v.MinLength:
		errors = append(errors, ValidationError{
			Field:   FieldPassword,
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	case v.MaxLength > 0 && length > v.MaxLength:
		errors = append(errors, ValidationError{
			Field:   FieldPassword,
			Code:    "max_length",
			Message: fmt.Sprintf("Password must be at most %d characters long.", v.MaxLength),
		})
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	if v.RequireLowercase && !hasLower {
		errors = append(errors, ValidationError{
			Field:   FieldPassword,
			Code:    "no_lowercase",
			Message: "Password must contain at least one lowercase letter.",
		})
	}

	if v.RequireUppercase && !hasUpper {
		errors = append(errors, ValidationError{
			Field:   FieldPassword,
			Code:    "no_uppercase",
			Message: "Password must contain at least one uppercase letter.",
		})
	}

	if v.RequireDigit && !hasDigit {
		errors = append(errors, ValidationError{
			Field:   FieldPassword,
			Code:    "no_digit",
			Message: "Password must contain at least one digit.",
		})
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ValidateWithConfirmation validates password and checks that confirmation
// matches it exactly.
func (v *PasswordValidator) ValidateWithConfirmation(password, confirmation string) ValidationResult {
	result := v.Validate(password)
	if password != confirmation {
		result.Errors = append(result.Errors, ValidationError{
			Field:   FieldConfirmation,
			Code:    "mismatch",
			Message: "Password confirmation does not match.",
		})
		result.Valid = false
	}
	return result
}

// HelpText is one line of the password policy, as a message ID plus the
// template data it needs.
type HelpText struct {
	MessageID string
	Data      map[string]any
}

// GetHelpTexts returns help texts for password requirements.
func (v *PasswordValidator) GetHelpTexts() []HelpText {
	texts := []HelpText{{
		MessageID: "password_help_length",
		Data:      map[string]any{"Min": v.MinLength, "Max": v.MaxLength},
	}}

	if v.RequireLowercase {
		texts = append(texts, HelpText{MessageID: "password_help_lowercase"})
	}
	if v.RequireUppercase {
		texts = append(texts, HelpText{MessageID: "password_help_uppercase"})
	}
	if v.RequireDigit {
		texts = append(texts, HelpText{MessageID: "password_help_digit"})
	}

	return texts
}
