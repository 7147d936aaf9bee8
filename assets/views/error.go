// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

type ErrorData struct {
	Layout     LayoutData
	StatusCode int
	Error      error

	// ShowDetails includes the error text; only enabled in development.
	ShowDetails bool
}

// Error renders the themed 404 and 500 pages.
func Error(data ErrorData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="error-page"><p class="status-code">`)
		h.text(strconv.Itoa(data.StatusCode))
		h.raw(" ")
		h.text(http.StatusText(data.StatusCode))
		h.raw("</p>")

		if data.ShowDetails && data.Error != nil {
			h.raw("<pre>")
			h.text(data.Error.Error())
			h.raw("</pre>")
		}

		h.raw(`<a class="button" href="/">`)
		h.tr("返回首页")
		h.raw("</a></section>")
	})

	return Layout(data.Layout, body)
}
