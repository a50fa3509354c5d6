// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// DashboardPage is the landing page for signed-in staff.
func DashboardPage() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="card"><h1>`)
		hw.text(T(ctx, "dashboard_title"))
		hw.raw("</h1>")
		if user := GetUser(ctx); user != nil {
			hw.raw("<p>")
			hw.text(TData(ctx, "dashboard_welcome", map[string]any{"Name": user.DisplayName()}))
			hw.raw("</p>")
		}
		hw.raw("</section>")
		return hw.err
	})
	return pageWithTitle("dashboard_title", body)
}
