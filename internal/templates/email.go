// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ResetEmailView is the data for the password reset email.
type ResetEmailView struct {
	Name      string
	ResetURL  string
	ExpiresIn int // minutes
}

// PasswordResetEmail renders the HTML body of the reset email. It is
// standalone markup with inline styles, not wrapped in the page layout.
func PasswordResetEmail(v ResetEmailView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html`)
		hw.attr("lang", Locale(ctx))
		hw.raw(`><body style="font-family:sans-serif;color:#1f2933;line-height:1.5">`)
		hw.raw("<p>")
		hw.text(TData(ctx, "reset_email_greeting", map[string]any{"Name": v.Name}))
		hw.raw("</p><p>")
		hw.text(T(ctx, "reset_email_intro"))
		hw.raw(`</p><p><a style="display:inline-block;padding:10px 18px;background:#0f766e;color:#fff;text-decoration:none;border-radius:4px"`)
		hw.href(v.ResetURL)
		hw.raw(">")
		hw.text(T(ctx, "reset_email_button"))
		hw.raw("</a></p><p>")
		hw.text(TData(ctx, "reset_email_expiry", map[string]any{"Minutes": v.ExpiresIn}))
		hw.raw("</p><p>")
		hw.text(T(ctx, "reset_email_link_hint"))
		hw.raw("<br><a")
		hw.href(v.ResetURL)
		hw.raw(">")
		hw.text(v.ResetURL)
		hw.raw("</a></p><p>")
		hw.text(T(ctx, "reset_email_ignore"))
		hw.raw("</p></body></html>")
		return hw.err
	})
}
