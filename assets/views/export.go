// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

type ExportData struct {
	Layout      LayoutData
	Formats     []core.ExportFormatInfo
	Format      core.ExportFormat
	Annotations *core.AnnotationPage

	Result  *core.ExportResult
	Cleaned *core.CleanResult
}

func Export(data ExportData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="card"><form method="post" action="/export"><fieldset class="formats"><legend>`)
		h.tr("导出格式")
		h.raw("</legend>")

		for _, f := range data.Formats {
			h.raw("<label><input")
			h.attr("type", "radio")
			h.attr("name", "format")
			h.attr("value", string(f.Value))

			if f.Value == data.Format {
				h.raw(" checked")
			}

			h.raw("><strong>")
			h.text(f.Label)
			h.raw("</strong> <small>")
			h.text(f.Description)
			h.raw("</small></label>")
		}

		h.raw("</fieldset>")

		if a := data.Annotations; a != nil && len(a.Items) > 0 {
			h.raw(`<fieldset class="images"><legend>`)
			h.tr("图片 ID")
			h.raw("</legend>")

			for _, item := range a.Items {
				h.raw("<label><input")
				h.attr("type", "checkbox")
				h.attr("name", "image_ids")
				h.attr("value", item.ImageID)
				h.raw(">")
				h.text(item.ImageID + " (" + strconv.Itoa(item.AnnotationCount) + ")")
				h.raw("</label>")
			}

			h.raw("</fieldset>")
		}

		h.input("包含图片", "checkbox", "include_images", "true")
		h.raw(`<div class="actions">`)
		h.submit("download", "导出")
		h.submit("export", "导出到服务器")
		h.submit("clean", "清理导出文件")
		h.raw("</div></form></section>")

		if r := data.Result; r != nil {
			h.raw(`<section class="card"><p>`)
			h.tr("已导出 {{.Count}} 张图片", "Count", r.ExportedCount)
			h.raw(" · ")
			h.text(r.OutputDir)
			h.raw(`</p><ul class="files">`)

			for _, f := range r.Files {
				h.raw("<li>")
				h.text(f)
				h.raw("</li>")
			}

			h.raw("</ul></section>")
		}

		if c := data.Cleaned; c != nil {
			h.raw(`<section class="card"><p>`)
			h.tr("已清理 {{.Count}} 项", "Count", c.CleanedItems)
			h.raw("</p></section>")
		}
	})

	return Layout(data.Layout, body)
}
