// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"slices"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

type DetectionData struct {
	Layout  LayoutData
	Weights []string
	Classes []core.ClassInfo
	Model   *core.ModelInfo
	Params  core.DetectParams

	Result *core.DetectionResult

	// Annotations is Result as a JSON annotation set, posted back by the save form.
	Annotations string

	Saved *core.AnnotationPage
}

func Detection(data DetectionData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="card"><form method="post" action="/detection" enctype="multipart/form-data">`)
		h.input("图片", "file", "image", "", "accept", "image/*")
		h.input("图片地址", "url", "image_url", "")
		detectParamsFields(h, data.Params, data.Weights, data.Classes)
		h.raw(`<div class="actions">`)
		h.submit("detect", "开始检测")
		h.submit("detect-url", "从地址检测")
		h.raw("</div></form>")

		if m := data.Model; m != nil {
			h.raw(`<p class="model-info">`)
			h.text(m.Weights)
			h.raw(" · ")
			h.text(m.Device)
			h.raw(" · ")
			h.tr("类别数")
			h.raw(" ")
			h.text(strconv.Itoa(m.NumClasses))
			h.raw("</p>")
		}

		h.raw("</section>")

		if data.Result != nil {
			h.raw(`<section class="card"><h2>`)
			h.tr("检测结果")
			h.raw("</h2>")
			detectionResult(h, *data.Result)

			if data.Annotations != "" {
				h.raw(`<form method="post" action="/detection">`)
				h.hidden("annotations", data.Annotations)
				h.submit("save", "保存标注")
				h.raw("</form>")
			}

			h.raw("</section>")
		}

		if data.Saved != nil {
			savedAnnotations(h, *data.Saved)
		}
	})

	return Layout(data.Layout, body)
}

// detectParamsFields writes the inference settings shared by single and batch detection.
func detectParamsFields(h *html, p core.DetectParams, weights []string, classes []core.ClassInfo) {
	h.raw(`<fieldset class="params">`)
	h.input("置信度阈值", "number", "conf_threshold", formatFloat(p.ConfThreshold, -1), "min", "0", "max", "1", "step", "0.05")
	h.input("IoU 阈值", "number", "iou_threshold", formatFloat(p.IoUThreshold, -1), "min", "0", "max", "1", "step", "0.05")
	h.input("图片尺寸", "number", "img_size", strconv.Itoa(p.ImgSize), "min", "32", "step", "32")

	h.raw("<label>")
	h.tr("权重")
	h.raw(`<select name="weights">`)

	if !slices.Contains(weights, p.Weights) {
		weights = append([]string{p.Weights}, weights...)
	}

	for _, w := range weights {
		h.raw("<option")
		h.attr("value", w)

		if w == p.Weights {
			h.raw(" selected")
		}

		h.raw(">")
		h.text(w)
		h.raw("</option>")
	}

	h.raw("</select></label>")

	if len(classes) > 0 {
		h.raw(`<details class="classes"><summary>`)
		h.tr("类别")
		h.raw("</summary>")

		for _, c := range classes {
			id := strconv.Itoa(c.ID)

			h.raw("<label><input")
			h.attr("type", "checkbox")
			h.attr("name", "classes")
			h.attr("value", id)

			if slices.Contains(p.Classes, c.ID) {
				h.raw(" checked")
			}

			h.raw(">")
			h.text(c.Name)
			h.raw("</label>")
		}

		h.raw("</details>")
	}

	h.raw("</fieldset>")
}

// detectionResult draws the image with its boxes and lists the detections.
func detectionResult(h *html, r core.DetectionResult) {
	h.raw(`<figure class="detection">`)

	if r.ImagePath != "" && r.ImageWidth > 0 && r.ImageHeight > 0 {
		w, ht := strconv.Itoa(r.ImageWidth), strconv.Itoa(r.ImageHeight)

		h.raw("<svg")
		h.attr("viewBox", "0 0 "+w+" "+ht)
		h.raw(` preserveAspectRatio="xMidYMid meet"><image`)
		h.attr("href", r.ImagePath)
		h.attr("width", w)
		h.attr("height", ht)
		h.raw("></image>")

		for _, d := range r.Detections {
			h.raw(`<g class="box"><rect`)
			h.attr("x", formatFloat(d.BBox.X, 1))
			h.attr("y", formatFloat(d.BBox.Y, 1))
			h.attr("width", formatFloat(d.BBox.Width, 1))
			h.attr("height", formatFloat(d.BBox.Height, 1))
			h.raw("></rect><text")
			h.attr("x", formatFloat(d.BBox.X, 1))
			h.attr("y", formatFloat(d.BBox.Y, 1))
			h.raw(">")
			h.text(d.ClassName + " " + formatFloat(d.Confidence, 2))
			h.raw("</text></g>")
		}

		h.raw("</svg>")
	}

	h.raw("<figcaption>")
	h.tr("推理耗时 {{.Seconds}} 秒", "Seconds", formatFloat(r.InferenceTime/1000, 3))
	h.raw("</figcaption></figure>")

	h.raw(`<table class="detections">`)
	h.th("类别", "置信度", "位置")
	h.raw("<tbody>")

	for _, d := range r.Detections {
		h.raw("<tr")
		h.attr("data-class-id", strconv.Itoa(d.ClassID))
		h.raw(">")
		h.td(d.ClassName)
		h.td(formatPercent(d.Confidence * 100))
		h.td("(" + formatFloat(d.BBox.X, 0) + ", " + formatFloat(d.BBox.Y, 0) + ") " +
			formatFloat(d.BBox.Width, 0) + "×" + formatFloat(d.BBox.Height, 0))
		h.raw("</tr>")
	}

	h.raw("</tbody></table>")
}

func savedAnnotations(h *html, page core.AnnotationPage) {
	h.raw(`<section class="card"><h2>`)
	h.tr("已保存标注")
	h.raw(`</h2><table class="annotations">`)
	h.th("图片 ID", "标注数", "更新时间", "")
	h.raw("<tbody>")

	for _, item := range page.Items {
		h.raw("<tr>")
		h.td(item.ImageID)
		h.td(strconv.Itoa(item.AnnotationCount))
		h.td(item.UpdatedAt)
		h.raw(`<td><form method="post" action="/detection">`)
		h.hidden("image_id", item.ImageID)
		h.submit("delete-annotations", "删除")
		h.raw("</form></td></tr>")
	}

	h.raw("</tbody></table></section>")
}
