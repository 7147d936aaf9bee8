// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package views holds the templ components that render DetectFE pages.

Components take plain data structs built by the page handlers in
server/routes and never call the backend themselves.
*/
package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/i18n"
)

// html accumulates output and keeps the first write error.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTML(ctx context.Context, w io.Writer) *html {
	return &html{ctx: ctx, w: w}
}

// raw writes s unescaped. Only pass markup literals.
func (h *html) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}

		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s escaped.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// tr writes the translation of msgid, escaped.
func (h *html) tr(msgid string, kv ...any) {
	h.text(i18n.Tr(h.ctx, msgid, kv...))
}

// attr writes ` name="value"` with value escaped.
func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// component renders c in place.
func (h *html) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}

	h.err = c.Render(h.ctx, h.w)
}

// th writes a table header row of translated labels.
func (h *html) th(msgids ...string) {
	h.raw("<thead><tr>")

	for _, id := range msgids {
		h.raw("<th>")

		if id != "" {
			h.tr(id)
		}

		h.raw("</th>")
	}

	h.raw("</tr></thead>")
}

// td writes one escaped table cell.
func (h *html) td(s string) {
	h.raw("<td>")
	h.text(s)
	h.raw("</td>")
}

// input writes a labelled form input.
func (h *html) input(label, typ, name, value string, extra ...string) {
	h.raw("<label>")
	h.tr(label)
	h.raw("<input")
	h.attr("type", typ)
	h.attr("name", name)

	if value != "" {
		h.attr("value", value)
	}

	for i := 0; i+1 < len(extra); i += 2 {
		h.attr(extra[i], extra[i+1])
	}

	h.raw("></label>")
}

// hidden writes a hidden form input.
func (h *html) hidden(name, value string) {
	h.raw("<input")
	h.attr("type", "hidden")
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
}

// submit writes a submit button carrying an action name.
func (h *html) submit(action, label string) {
	h.raw(`<button type="submit" name="action"`)
	h.attr("value", action)
	h.raw(">")
	h.tr(label)
	h.raw("</button>")
}

// yesNo writes the localized yes or no.
func (h *html) yesNo(b bool) {
	if b {
		h.tr("是")
	} else {
		h.tr("否")
	}
}

func formatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// formatPercent formats a value already on the 0..100 scale.
func formatPercent(pct float64) string {
	return formatFloat(pct, 1) + "%"
}

// component adapts a render function to templ.Component.
func component(render func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		render(h)

		return h.err
	})
}
