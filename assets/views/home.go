// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

// HomeData is nil-tolerant: a failed fetch leaves its field nil.
type HomeData struct {
	Layout LayoutData
	Info   *core.SystemInfo
	Health *core.HealthStatus
}

func Home(data HomeData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="card"><h2>`)
		h.tr("服务状态")
		h.raw("</h2>")

		if data.Health != nil {
			h.raw(`<p class="health"`)
			h.attr("data-status", data.Health.Status)
			h.raw(">")
			h.text(data.Health.Status)
			h.raw("</p>")
		}

		h.raw(`</section><section class="card"><h2>`)
		h.tr("系统信息")
		h.raw("</h2>")

		if info := data.Info; info != nil {
			h.raw(`<dl class="system-info"><dt>`)
			h.tr("名称")
			h.raw("</dt><dd>")
			h.text(info.AppName)
			h.raw("</dd><dt>")
			h.tr("版本")
			h.raw("</dt><dd>")
			h.text(info.Version)
			h.raw("</dd><dt>")
			h.tr("CUDA 可用")
			h.raw("</dt><dd>")
			h.yesNo(info.CUDAAvailable)
			h.raw("</dd>")

			if info.CUDAAvailable {
				h.raw("<dt>")
				h.tr("CUDA 设备数")
				h.raw("</dt><dd>")
				h.text(strconv.Itoa(info.CUDADeviceCount))
				h.raw("</dd><dt>")
				h.tr("CUDA 设备")
				h.raw("</dt><dd>")
				h.text(info.CUDADeviceName)
				h.raw("</dd>")
			}

			h.raw("</dl>")
		}

		h.raw("</section>")
	})

	return Layout(data.Layout, body)
}
