// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps a page body in the document shell with navigation.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw("<!DOCTYPE html>\n<html")
		hw.attr("lang", Locale(ctx))
		hw.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw("<title>")
		hw.text(title + " | " + T(ctx, "app_name"))
		hw.raw(`</title><link rel="stylesheet"`)
		hw.attr("href", CSSPath(ctx))
		hw.raw(`><script defer`)
		hw.attr("src", JSPath(ctx))
		hw.raw(`></script></head><body`)
		if user := GetUser(ctx); user != nil {
			hw.raw(` data-events="/events"`)
		}
		hw.raw(`><header class="topbar"><a class="brand" href="/">`)
		hw.text(T(ctx, "app_name"))
		hw.raw("</a>")
		if user := GetUser(ctx); user != nil {
			hw.raw(`<nav><a href="/">`)
			hw.text(T(ctx, "nav_dashboard"))
			hw.raw(`</a><a href="/account/password">`)
			hw.text(T(ctx, "nav_change_password"))
			hw.raw(`</a><span class="user">`)
			hw.text(user.DisplayName())
			hw.raw(`</span><form method="post" action="/auth/logout">`)
			hw.csrfField(ctx)
			hw.raw(`<button type="submit" class="link">`)
			hw.text(T(ctx, "nav_logout"))
			hw.raw("</button></form></nav>")
		}
		hw.raw(`</header><main id="content">`)
		hw.component(ctx, body)
		hw.raw("</main></body></html>")
		return hw.err
	})
}
