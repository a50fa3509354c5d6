// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// ErrorPage renders an error with its status code and a translated message.
func ErrorPage(code int, messageID string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card error"><p class="code">`)
		hw.text(strconv.Itoa(code))
		hw.raw("</p><h1>")
		hw.text(T(ctx, "error_title"))
		hw.raw("</h1><p>")
		hw.text(T(ctx, messageID))
		hw.raw(`</p><p><a href="/">`)
		hw.text(T(ctx, "error_back_home"))
		hw.raw("</a></p></section>")
		return hw.err
	})
	return pageWithTitle("error_title", body)
}
