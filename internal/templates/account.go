// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"github.com/a-h/templ"
)

// ChangePasswordView is the data for the change password page.
type ChangePasswordView struct {
	Notice string // message ID of an informational notice
	Fields map[string]string
	Help   []auth.HelpText
}

// ChangePasswordPage renders the change password form for the signed-in user.
func ChangePasswordPage(v ChangePasswordView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card"><h1>`)
		hw.text(T(ctx, "account_password_title"))
		hw.raw("</h1>")
		notice(ctx, hw, "notice", v.Notice)
		hw.raw(`<form method="post" action="/account/password">`)
		hw.csrfField(ctx)
		input(ctx, hw, inputSpec{name: "current_password", label: "account_current_password", kind: "password", autocomplete: "current-password", err: v.Fields["current_password"]})
		input(ctx, hw, inputSpec{name: "password", label: "account_new_password", kind: "password", autocomplete: "new-password", err: v.Fields["password"], help: v.Help})
		input(ctx, hw, inputSpec{name: "confirmation", label: "account_confirm_password", kind: "password", autocomplete: "new-password", err: v.Fields["confirmation"]})
		hw.raw(`<button type="submit">`)
		hw.text(T(ctx, "account_password_submit"))
		hw.raw("</button></form></section>")
		return hw.err
	})
	return pageWithTitle("account_password_title", body)
}
