// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestUser_HasPassword(t *testing.T) {
	assert.False(t, (&models.User{}).HasPassword())
	assert.False(t, (&models.User{PasswordHash: []byte{}}).HasPassword())
	assert.True(t, (&models.User{PasswordHash: make([]byte, 48)}).HasPassword())
}

func TestAccount_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		account  models.Account
		expected string
	}{
		{"full name", models.Account{FirstName: "Ana", LastName: "Ruiz", User: models.User{Username: "aruiz"}}, "Ana Ruiz"},
		{"first name only", models.Account{FirstName: "Ana", User: models.User{Username: "aruiz"}}, "Ana"},
		{"username fallback", models.Account{User: models.User{Username: "aruiz"}}, "aruiz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.account.DisplayName())
		})
	}
}

func TestAccount_CanSignIn(t *testing.T) {
	tests := []struct {
		name     string
		user     bool
		employee bool
		expected bool
	}{
		{"both active", true, true, true},
		{"user deactivated", false, true, false},
		{"employee deactivated", true, false, false},
		{"both deactivated", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := models.Account{User: models.User{Active: tt.user}, EmployeeActive: tt.employee}
			assert.Equal(t, tt.expected, account.CanSignIn())
		})
	}
}
