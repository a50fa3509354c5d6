// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/i18n"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"github.com/a-h/templ"
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(appcontext.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// CSSPath returns the path to the hashed CSS file.
func CSSPath(ctx context.Context) string {
	if path, ok := ctx.Value(appcontext.CSSPath{}).(string); ok {
		return path
	}
	return "/static/css/styles.css"
}

// JSPath returns the path to the hashed JS file.
func JSPath(ctx context.Context) string {
	if path, ok := ctx.Value(appcontext.JSPath{}).(string); ok {
		return path
	}
	return "/static/js/app.js"
}

// GetUser returns the signed-in account from context, or nil if not logged in.
func GetUser(ctx context.Context) *models.Account {
	if user, ok := ctx.Value(appcontext.User{}).(*models.Account); ok {
		return user
	}
	return nil
}

// IsAuthenticated returns true if a user is logged in.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}

// htmlWriter writes markup and remembers the first error, so components can
// emit a sequence of fragments and check once at the end.
type htmlWriter struct {
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text writes escaped text.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr writes name="value" with the value escaped, preceded by a space.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// href writes an href attribute after URL sanitization.
func (hw *htmlWriter) href(url string) {
	hw.attr("href", string(templ.URL(url)))
}

// component renders a nested component into the same writer.
func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// csrfField writes the hidden CSRF input.
func (hw *htmlWriter) csrfField(ctx context.Context) {
	hw.raw(`<input type="hidden" name="csrf_token"`)
	hw.attr("value", CSRFToken(ctx))
	hw.raw(">")
}

// fieldError writes a translated field error when messageID is set.
func (hw *htmlWriter) fieldError(ctx context.Context, field, messageID string) {
	if messageID == "" {
		return
	}
	hw.raw(`<p class="field-error"`)
	hw.attr("id", field+"-error")
	hw.raw(">")
	hw.text(T(ctx, messageID))
	hw.raw("</p>")
}
