// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

// Splits are the dataset splits in display order, with their labels.
var Splits = []struct{ Value, Label string }{
	{"train", "训练集"},
	{"val", "验证集"},
	{"test", "测试集"},
}

type DatasetData struct {
	Layout   LayoutData
	Datasets []core.DatasetSummary

	// Set when a dataset is selected with ?name=.
	Info   *core.DatasetInfo
	Split  string
	Images *core.DatasetImagePage
}

func Dataset(data DatasetData) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="card"><h2>`)
		h.tr("创建数据集")
		h.raw(`</h2><form method="post" action="/dataset"><fieldset class="params">`)
		h.input("名称", "text", "name", "", "required", "required", "pattern", `[A-Za-z0-9_\-]+`)
		h.input("类别", "text", "classes", "", "required", "required", "placeholder", "person, car, dog")
		h.input("描述", "text", "description", "")
		h.raw(`</fieldset><div class="actions">`)
		h.submit("create", "创建数据集")
		h.raw("</div></form></section>")

		datasetList(h, data.Datasets)

		if data.Info != nil {
			datasetDetail(h, data)
		}
	})

	return Layout(data.Layout, body)
}

func datasetList(h *html, datasets []core.DatasetSummary) {
	h.raw(`<section class="card"><table class="datasets">`)
	h.th("名称", "类型", "类别数", "类别", "")
	h.raw("<tbody>")

	for _, ds := range datasets {
		h.raw("<tr><td><a")
		h.attr("href", "/dataset?name="+url.QueryEscape(ds.Name))
		h.raw(">")
		h.text(ds.Name)
		h.raw("</a></td>")
		h.td(ds.Type)
		h.td(strconv.Itoa(ds.NumClasses))
		h.td(strings.Join(ds.Classes, ", "))
		h.raw("<td>")

		if ds.Type == "custom" {
			h.raw(`<form method="post" action="/dataset">`)
			h.hidden("name", ds.Name)
			h.submit("delete", "删除")
			h.raw("</form>")
		}

		h.raw("</td></tr>")
	}

	h.raw("</tbody></table></section>")
}

func datasetDetail(h *html, data DatasetData) {
	info := data.Info

	h.raw(`<section class="card dataset-detail"><h2>`)
	h.text(info.Name)
	h.raw(`</h2><dl><dt>`)
	h.tr("路径")
	h.raw("</dt><dd>")
	h.text(info.Path)
	h.raw("</dd><dt>")
	h.tr("类别")
	h.raw("</dt><dd>")
	h.text(strings.Join(info.Classes, ", "))
	h.raw("</dd>")

	counts := map[string]int{"train": info.Split.Train, "val": info.Split.Val, "test": info.Split.Test}

	for _, s := range Splits {
		h.raw("<dt>")
		h.tr(s.Label)
		h.raw("</dt><dd>")
		h.text(strconv.Itoa(counts[s.Value]))
		h.raw("</dd>")
	}

	h.raw("</dl>")

	h.raw(`<nav class="tabs">`)

	for _, s := range Splits {
		h.raw("<a")
		h.attr("href", "/dataset?name="+url.QueryEscape(info.Name)+"&split="+s.Value)

		if s.Value == data.Split {
			h.raw(` class="active"`)
		}

		h.raw(">")
		h.tr(s.Label)
		h.raw("</a>")
	}

	h.raw(`</nav><form method="post" action="/dataset" enctype="multipart/form-data">`)
	h.hidden("name", info.Name)
	h.hidden("split", data.Split)
	h.input("图片", "file", "images", "", "accept", "image/*", "multiple", "multiple")
	h.submit("upload", "上传")
	h.raw("</form>")

	if imgs := data.Images; imgs != nil {
		h.raw(`<p class="total">`)
		h.tr("共 {{.Count}} 张图片", "Count", imgs.Total)
		h.raw(`</p><ul class="gallery">`)

		for _, img := range imgs.Images {
			h.raw("<li><img")
			h.attr("src", img.Path)
			h.attr("alt", img.Name)
			h.raw(` loading="lazy"><span>`)
			h.text(img.Name)
			h.raw("</span></li>")
		}

		h.raw("</ul>")

		pager(h, "/dataset?name="+url.QueryEscape(info.Name)+"&split="+data.Split, imgs.Page, imgs.PageSize, imgs.Total)
	}

	h.raw("</section>")
}

// pager writes previous and next links. base must already carry a query.
func pager(h *html, base string, page, pageSize, total int) {
	if pageSize <= 0 || total <= pageSize {
		return
	}

	h.raw(`<nav class="pager">`)

	if page > 1 {
		h.raw("<a")
		h.attr("href", base+"&page="+strconv.Itoa(page-1))
		h.raw(">‹</a>")
	}

	h.raw("<span>")
	h.text(strconv.Itoa(page) + " / " + strconv.Itoa((total+pageSize-1)/pageSize))
	h.raw("</span>")

	if page*pageSize < total {
		h.raw("<a")
		h.attr("href", base+"&page="+strconv.Itoa(page+1))
		h.raw(">›</a>")
	}

	h.raw("</nav>")
}
