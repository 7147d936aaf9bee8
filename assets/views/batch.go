// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

type BatchData struct {
	Layout  LayoutData
	Weights []string
	Params  core.DetectParams
	Result  *core.BatchDetectionResult
}

func Batch(data BatchData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="card"><form method="post" action="/batch" enctype="multipart/form-data">`)
		h.input("图片", "file", "images", "", "accept", "image/*", "multiple", "multiple")
		detectParamsFields(h, data.Params, data.Weights, nil)
		h.raw(`<div class="actions">`)
		h.submit("detect", "开始检测")
		h.raw("</div></form></section>")

		if r := data.Result; r != nil {
			h.raw(`<section class="card"><h2>`)
			h.tr("检测结果")
			h.raw(`</h2><p class="total">`)
			h.tr("共 {{.Count}} 张图片", "Count", r.Total)
			h.raw(`</p><table class="batch-results">`)
			h.th("文件", "图片", "检测结果", "错误")
			h.raw("<tbody>")

			for _, item := range r.Results {
				h.raw("<tr>")
				h.td(item.Filename)
				h.raw("<td>")

				if item.ImagePath != "" {
					h.raw(`<a`)
					h.attr("href", item.ImagePath)
					h.raw(">")
					h.text(item.ImageID)
					h.raw("</a>")
				}

				h.raw("</td>")

				if item.Error == "" {
					h.td(strconv.Itoa(len(item.Detections)))
				} else {
					h.td("")
				}

				h.td(item.Error)
				h.raw("</tr>")
			}

			h.raw("</tbody></table></section>")
		}
	})

	return Layout(data.Layout, body)
}
