// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	err := i18n.Init()
	require.NoError(t, err)
}

func TestT(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	// Should translate known key
	result := i18n.T(ctx, "app_name")
	assert.NotEqual(t, "app_name", result) // Should be translated
}

func TestT_Spanish(t *testing.T) {
	require.NoError(t, i18n.Init())

	en := i18n.T(i18n.WithLocale(context.Background(), language.English), "forgot_submit")
	es := i18n.T(i18n.WithLocale(context.Background(), language.Spanish), "forgot_submit")

	assert.NotEqual(t, "forgot_submit", es)
	assert.NotEqual(t, en, es)
}

func TestTranslationsComplete(t *testing.T) {
	require.NoError(t, i18n.Init())

	keys := []string{
		"app_name", "login_title", "forgot_title", "forgot_ack", "reset_title",
		"reset_invalid", "reset_success", "reset_email_subject", "reset_email_expiry",
		"password_error_min_length", "password_error_mismatch", "error_generic",
		"password_help_length", "password_help_digit", "account_password_title",
		"account_password_changed", "account_current_password_wrong", "nav_change_password",
	}
	for _, tag := range i18n.Supported {
		ctx := i18n.WithLocale(context.Background(), tag)
		for _, key := range keys {
			assert.NotEqual(t, key, i18n.T(ctx, key), "%s missing in %s", key, tag)
		}
	}
}

func TestT_UnknownKey(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	// Should return the key itself for unknown messages
	result := i18n.T(ctx, "unknown_key_that_does_not_exist")
	assert.Equal(t, "unknown_key_that_does_not_exist", result)
}

func TestT_NoLocaleContext(t *testing.T) {
	require.NoError(t, i18n.Init())

	// Without WithLocale, should fallback to English
	ctx := context.Background()

	result := i18n.T(ctx, "app_name")
	assert.NotEmpty(t, result)
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	result := i18n.TData(ctx, "reset_email_expiry", map[string]any{"Minutes": 5})
	assert.Contains(t, result, "5 minutes")

	es := i18n.WithLocale(context.Background(), language.Spanish)
	assert.Contains(t, i18n.TData(es, "reset_email_expiry", map[string]any{"Minutes": 5}), "5 minutos")
}

func TestTPlural(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	// Test plural - will return key if no plural message defined
	result := i18n.TPlural(ctx, "app_name", 1)
	assert.NotEmpty(t, result)

	result = i18n.TPlural(ctx, "app_name", 5)
	assert.NotEmpty(t, result)
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		expected       language.Tag
		acceptLanguage string
	}{
		{language.English, "en"},
		{language.English, "en-US"},
		{language.Spanish, "es"},
		{language.Spanish, "es-ES"},
		{language.Spanish, "es-419"},
		{language.English, "fr"}, // fallback to English
		{language.English, ""},   // empty defaults to English
		{language.Spanish, "es, en;q=0.9"},
		{language.English, "en, es;q=0.9"},
		{language.English, "%%garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			assert.Equal(t, tt.expected, i18n.MatchLanguage(tt.acceptLanguage))
		})
	}
}

func TestWithLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.Spanish)

	locale := i18n.GetLocale(ctx)
	assert.Equal(t, "es", locale)
}

func TestGetLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "en", i18n.GetLocale(ctx))
}

func TestGetLocale_Default(t *testing.T) {
	ctx := context.Background()

	// Without WithLocale, should return "en"
	assert.Equal(t, "en", i18n.GetLocale(ctx))
}
