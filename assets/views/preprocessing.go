// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

type PreprocessingData struct {
	Layout        LayoutData
	BlurThreshold float64

	Quality *core.BatchQualityReport

	Augment      *core.AugmentResult
	BatchAugment *core.BatchAugmentResult
}

func Preprocessing(data PreprocessingData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="card"><h2>`)
		h.tr("质量检测")
		h.raw(`</h2><form method="post" action="/preprocessing" enctype="multipart/form-data">`)
		h.input("图片", "file", "images", "", "accept", "image/*", "multiple", "multiple")
		h.input("模糊阈值", "number", "blur_threshold", formatFloat(data.BlurThreshold, -1), "min", "0", "step", "any")
		h.submit("quality", "质量检测")
		h.raw("</form>")

		if q := data.Quality; q != nil {
			qualityReport(h, *q)
		}

		h.raw(`</section><section class="card"><h2>`)
		h.tr("数据增强")
		h.raw(`</h2><form method="post" action="/preprocessing" enctype="multipart/form-data"><fieldset class="params">`)
		h.input("图片", "file", "images", "", "accept", "image/*", "multiple", "multiple")
		h.input("宽度", "number", "resize_width", "", "min", "1")
		h.input("高度", "number", "resize_height", "", "min", "1")
		h.input("旋转", "number", "rotate", "", "step", "any")
		h.input("亮度", "number", "brightness", "", "min", "0", "step", "0.1")
		h.input("对比度", "number", "contrast", "", "min", "0", "step", "0.1")
		h.input("饱和度", "number", "saturation", "", "min", "0", "step", "0.1")
		h.input("色调偏移", "number", "hue_shift", "", "min", "-180", "max", "180")
		h.input("水平翻转", "checkbox", "flip_horizontal", "true")
		h.input("垂直翻转", "checkbox", "flip_vertical", "true")
		h.raw(`</fieldset><div class="actions">`)
		h.submit("augment", "数据增强")
		h.raw("</div></form>")

		if a := data.Augment; a != nil {
			h.raw(`<h3>`)
			h.tr("增强结果")
			h.raw(`</h3><figure class="augmented"><img`)
			h.attr("src", a.AugmentedPath)
			h.raw("><figcaption>")
			h.text(sizeString(a.OriginalSize) + " → " + sizeString(a.AugmentedSize))
			h.raw("</figcaption></figure>")
		}

		if b := data.BatchAugment; b != nil {
			h.raw(`<h3>`)
			h.tr("增强结果")
			h.raw(`</h3><table class="augment-results">`)
			h.th("文件", "增强结果", "错误")
			h.raw("<tbody>")

			for _, item := range b.Results {
				h.raw("<tr>")
				h.td(item.OriginalName)
				h.raw("<td>")

				if item.Success {
					h.raw("<a")
					h.attr("href", item.AugmentedPath)
					h.raw(">")
					h.text(item.AugmentedPath)
					h.raw("</a>")
				}

				h.raw("</td>")
				h.td(item.Error)
				h.raw("</tr>")
			}

			h.raw("</tbody></table>")
		}

		h.raw("</section>")
	})

	return Layout(data.Layout, body)
}

func qualityReport(h *html, q core.BatchQualityReport) {
	h.raw(`<p class="total">`)
	h.tr("共 {{.Count}} 张图片", "Count", q.Total)
	h.raw(" · ")
	h.tr("模糊")
	h.raw(" ")
	h.text(strconv.Itoa(q.BlurryCount))
	h.raw(" · ")
	h.tr("质量")
	h.raw(" ")
	h.text(formatPercent(q.QualityRate))
	h.raw(`</p><table class="quality">`)
	h.th("文件", "模糊度", "质量", "图片尺寸", "错误")
	h.raw("<tbody>")

	for _, r := range q.Results {
		h.raw("<tr")

		if r.IsBlurry {
			h.raw(` class="blurry"`)
		}

		h.raw(">")
		h.td(r.Filename)
		h.td(formatFloat(r.BlurScore, 2))
		h.raw("<td>")

		if r.Error == "" {
			if r.IsBlurry {
				h.tr("模糊")
			} else {
				h.tr("清晰")
			}
		}

		h.raw("</td>")

		if r.Error == "" {
			h.td(sizeString(core.ImageSize{Width: r.ImageInfo.Width, Height: r.ImageInfo.Height}))
		} else {
			h.td("")
		}

		h.td(r.Error)
		h.raw("</tr>")
	}

	h.raw("</tbody></table>")
}

func sizeString(s core.ImageSize) string {
	return strconv.Itoa(s.Width) + "×" + strconv.Itoa(s.Height)
}
