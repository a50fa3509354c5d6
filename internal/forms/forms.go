// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package forms binds and validates the shape of submitted forms. Errors are
// reported as translation message IDs keyed by field name.
package forms

import (
	"errors"
	"strings"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Message IDs used for field errors.
const (
	MsgRequired     = "field_required"
	MsgInvalidEmail = "field_invalid_email"
)

// Errors maps a field name to a translation message ID.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// FromValidation converts ozzo validation errors. Errors that are not field
// errors yield nil.
func FromValidation(err error) Errors {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(Errors, len(verrs))
	for field, ferr := range verrs {
		out[field] = ferr.Error()
	}
	return out
}

// FromPassword converts password policy errors, keeping the first error of
// each field.
func FromPassword(err *auth.PasswordValidationError) Errors {
	out := make(Errors)
	for _, verr := range err.Errors {
		if out.Has(verr.Field) {
			continue
		}
		out[verr.Field] = "password_error_" + verr.Code
	}
	return out
}

// Login is the sign-in form.
type Login struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (f Login) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required.Error(MsgRequired), validation.Length(0, 64)),
		validation.Field(&f.Password, validation.Required.Error(MsgRequired), validation.Length(0, 256)),
	)
}

// Forgot is the password reset request form.
type Forgot struct {
	Email string `form:"email" json:"email"`
}

// Normalize trims surrounding whitespace.
func (f *Forgot) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f Forgot) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error(MsgRequired),
			validation.Length(0, 254).Error(MsgInvalidEmail),
			is.Email.Error(MsgInvalidEmail),
		),
	)
}

// Reset is the new password form. AccountID and Token come from the link in
// the reset email and travel as hidden fields.
type Reset struct {
	AccountID    int64  `form:"accountId" query:"accountId" json:"accountId"`
	Token        string `form:"token" query:"token" json:"token"`
	Password     string `form:"password" json:"password"`
	Confirmation string `form:"confirmation" json:"confirmation"`
}

// ValidateLink checks that the link parameters are present and plausible.
func (f Reset) ValidateLink() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.AccountID, validation.Required, validation.Min(int64(1))),
		validation.Field(&f.Token, validation.Required, validation.Length(1, 128)),
	)
}

// ChangePassword is the change password form of a signed-in user.
type ChangePassword struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	Password        string `form:"password" json:"password"`
	Confirmation    string `form:"confirmation" json:"confirmation"`
}

// Validate only checks presence. The password policy is enforced by the
// auth service.
func (f ChangePassword) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.CurrentPassword, validation.Required.Error(MsgRequired), validation.Length(0, 256)),
		validation.Field(&f.Password, validation.Required.Error(MsgRequired)),
	)
}
