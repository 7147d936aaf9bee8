// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/i18n"
	"codeberg.org/detectfe/detectfe/server/request_context"
)

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Path   string
	Title  string // msgid
	Active bool
}

// LayoutData is shared by every page.
type LayoutData struct {
	Title string // msgid
	Nav   []NavLink
}

// Layout renders the document shell around body.
//
// Notices queued on the request context are read at render time, so body data
// must be fetched before Layout renders.
func Layout(data LayoutData, body templ.Component) templ.Component {
	return component(func(h *html) {
		rc := request_context.FromContext(h.ctx)

		h.raw("<!DOCTYPE html><html")
		h.attr("lang", i18n.TagFrom(h.ctx).String())
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.tr(data.Title)
		h.raw(` - DetectFE</title><link rel="stylesheet" href="/css/main.css"></head><body>`)

		h.raw(`<nav class="sidebar"><a class="brand" href="/">DetectFE</a><ul>`)

		for _, link := range data.Nav {
			h.raw("<li><a")
			h.attr("href", link.Path)

			if link.Active {
				h.raw(` class="active" aria-current="page"`)
			}

			h.raw(">")
			h.tr(link.Title)
			h.raw("</a></li>")
		}

		h.raw("</ul></nav>")

		if notices := rc.Notices(); len(notices) > 0 {
			h.raw(`<div class="notices">`)

			for _, n := range notices {
				h.raw(`<div role="alert"`)
				h.attr("class", "notice notice-"+string(n.Level))
				h.raw(">")
				h.text(n.Message)
				h.raw("</div>")
			}

			h.raw("</div>")
		}

		h.raw(`<main><h1 class="page-title">`)
		h.tr(data.Title)
		h.raw("</h1>")
		h.component(body)
		h.raw("</main></body></html>")
	})
}
