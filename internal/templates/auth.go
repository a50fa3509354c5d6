// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"strconv"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"github.com/a-h/templ"
)

// LoginView is the data for the sign-in page.
type LoginView struct {
	Username string
	Error    string // message ID of a form-level error
	Notice   string // message ID of an informational notice
	Fields   map[string]string
}

// LoginPage renders the sign-in form.
func LoginPage(v LoginView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card"><h1>`)
		hw.text(T(ctx, "login_title"))
		hw.raw("</h1>")
		notice(ctx, hw, "notice", v.Notice)
		notice(ctx, hw, "alert", v.Error)
		hw.raw(`<form method="post" action="/auth/login">`)
		hw.csrfField(ctx)
		input(ctx, hw, inputSpec{name: "username", label: "login_username", kind: "text", value: v.Username, autocomplete: "username", err: v.Fields["username"]})
		input(ctx, hw, inputSpec{name: "password", label: "login_password", kind: "password", autocomplete: "current-password", err: v.Fields["password"]})
		hw.raw(`<button type="submit">`)
		hw.text(T(ctx, "login_submit"))
		hw.raw(`</button></form><p><a href="/auth/forgot">`)
		hw.text(T(ctx, "login_forgot_link"))
		hw.raw("</a></p></section>")
		return hw.err
	})
	return pageWithTitle("login_title", body)
}

// ForgotView is the data for the reset request page.
type ForgotView struct {
	Email  string
	Sent   bool
	Fields map[string]string
}

// ForgotPage renders the reset request form, or the acknowledgement once
// the request has been accepted.
func ForgotPage(v ForgotView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card"><h1>`)
		hw.text(T(ctx, "forgot_title"))
		hw.raw("</h1>")
		if v.Sent {
			notice(ctx, hw, "notice", "forgot_ack")
		} else {
			hw.raw("<p>")
			hw.text(T(ctx, "forgot_intro"))
			hw.raw(`</p><form method="post" action="/auth/forgot">`)
			hw.csrfField(ctx)
			input(ctx, hw, inputSpec{name: "email", label: "forgot_email", kind: "email", value: v.Email, autocomplete: "email", err: v.Fields["email"]})
			hw.raw(`<button type="submit">`)
			hw.text(T(ctx, "forgot_submit"))
			hw.raw("</button></form>")
		}
		hw.raw(`<p><a href="/auth/login">`)
		hw.text(T(ctx, "forgot_back_to_login"))
		hw.raw("</a></p></section>")
		return hw.err
	})
	return pageWithTitle("forgot_title", body)
}

// ResetView is the data for the new password page.
type ResetView struct {
	AccountID int64
	Token     string
	Fields    map[string]string
	Help      []auth.HelpText
}

// ResetPage renders the new password form. The link parameters are carried
// as hidden fields.
func ResetPage(v ResetView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card"><h1>`)
		hw.text(T(ctx, "reset_title"))
		hw.raw(`</h1><form method="post" action="/auth/reset">`)
		hw.csrfField(ctx)
		hw.raw(`<input type="hidden" name="accountId"`)
		hw.attr("value", strconv.FormatInt(v.AccountID, 10))
		hw.raw(`><input type="hidden" name="token"`)
		hw.attr("value", v.Token)
		hw.raw(">")
		input(ctx, hw, inputSpec{name: "password", label: "reset_new_password", kind: "password", autocomplete: "new-password", err: v.Fields["password"], help: v.Help})
		input(ctx, hw, inputSpec{name: "confirmation", label: "reset_confirm_password", kind: "password", autocomplete: "new-password", err: v.Fields["confirmation"]})
		hw.raw(`<button type="submit">`)
		hw.text(T(ctx, "reset_submit"))
		hw.raw("</button></form></section>")
		return hw.err
	})
	return pageWithTitle("reset_title", body)
}

// ResetInvalidPage tells the user the link cannot be used and offers a new one.
func ResetInvalidPage() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card"><h1>`)
		hw.text(T(ctx, "reset_title"))
		hw.raw("</h1>")
		notice(ctx, hw, "alert", "reset_invalid")
		hw.raw(`<p><a href="/auth/forgot">`)
		hw.text(T(ctx, "reset_request_new"))
		hw.raw("</a></p></section>")
		return hw.err
	})
	return pageWithTitle("reset_title", body)
}

type inputSpec struct {
	name         string
	label        string
	kind         string
	value        string
	autocomplete string
	err          string
	help         []auth.HelpText
}

func input(ctx context.Context, hw *htmlWriter, in inputSpec) {
	hw.raw(`<div class="field"><label`)
	hw.attr("for", in.name)
	hw.raw(">")
	hw.text(T(ctx, in.label))
	hw.raw("</label><input")
	hw.attr("type", in.kind)
	hw.attr("id", in.name)
	hw.attr("name", in.name)
	if in.value != "" {
		hw.attr("value", in.value)
	}
	if in.autocomplete != "" {
		hw.attr("autocomplete", in.autocomplete)
	}
	hw.raw(" required")
	if in.err != "" {
		hw.attr("aria-invalid", "true")
		hw.attr("aria-describedby", in.name+"-error")
	}
	hw.raw(">")
	if len(in.help) > 0 {
		hw.raw(`<ul class="help">`)
		for _, h := range in.help {
			hw.raw("<li>")
			hw.text(TData(ctx, h.MessageID, h.Data))
			hw.raw("</li>")
		}
		hw.raw("</ul>")
	}
	hw.fieldError(ctx, in.name, in.err)
	hw.raw("</div>")
}

func notice(ctx context.Context, hw *htmlWriter, class, messageID string) {
	if messageID == "" {
		return
	}
	hw.raw("<p")
	hw.attr("class", class)
	hw.attr("role", "status")
	hw.raw(">")
	hw.text(T(ctx, messageID))
	hw.raw("</p>")
}

// pageWithTitle defers the title lookup until render so it is translated
// with the request locale.
func pageWithTitle(titleID string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, titleID), body).Render(ctx, w)
	})
}
