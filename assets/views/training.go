// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"codeberg.org/detectfe/detectfe/core"
)

// Optimizers are the optimizers the training script accepts.
var Optimizers = []string{"SGD", "Adam", "AdamW"}

type TrainingData struct {
	Layout          LayoutData
	Tasks           *core.TrainingTaskList
	Datasets        []core.TrainingDataset
	Hyperparameters []core.Hyperparameters
	Config          core.TrainingConfig

	// Set when a task is selected with ?task=.
	Status  *core.TrainingStatus
	Output  *core.TrainingOutput
	Results *core.TrainingResults
}

func Training(data TrainingData) templ.Component {
	body := component(func(h *html) {
		trainingForm(h, data)

		if data.Tasks != nil {
			trainingTasks(h, data.Tasks.Tasks)
		}

		if data.Status != nil {
			trainingDetail(h, data)
		}
	})

	return Layout(data.Layout, body)
}

func trainingForm(h *html, data TrainingData) {
	cfg := data.Config

	h.raw(`<section class="card"><form method="post" action="/training"><fieldset class="params">`)

	h.raw("<label>")
	h.tr("数据集")
	h.raw(`<select name="data_yaml" required>`)

	for _, ds := range data.Datasets {
		h.raw("<option")
		h.attr("value", ds.Path)

		if ds.Path == cfg.DataYAML {
			h.raw(" selected")
		}

		h.raw(">")
		h.text(ds.Name + " (" + ds.RelativePath + ")")
		h.raw("</option>")
	}

	h.raw("</select></label>")

	h.input("权重", "text", "weights", cfg.Weights)
	h.input("训练轮数", "number", "epochs", strconv.Itoa(cfg.Epochs), "min", "1")
	h.input("批大小", "number", "batch_size", strconv.Itoa(cfg.BatchSize), "min", "1")
	h.input("图片尺寸", "number", "img_size", strconv.Itoa(cfg.ImgSize), "min", "32", "step", "32")
	h.input("学习率", "number", "learning_rate", formatFloat(cfg.LearningRate, -1), "min", "0", "step", "any")
	h.input("设备", "text", "device", cfg.Device, "placeholder", "0 / cpu")
	h.input("名称", "text", "name", cfg.Name)

	h.raw("<label>")
	h.tr("优化器")
	h.raw(`<select name="optimizer">`)

	for _, opt := range Optimizers {
		h.raw("<option")
		h.attr("value", opt)

		if opt == cfg.Optimizer {
			h.raw(" selected")
		}

		h.raw(">")
		h.text(opt)
		h.raw("</option>")
	}

	h.raw("</select></label>")

	if len(data.Hyperparameters) > 0 {
		h.raw(`<p class="hint">`)
		h.tr("超参数")
		h.raw(": ")

		names := make([]string, 0, len(data.Hyperparameters))
		for _, hyp := range data.Hyperparameters {
			names = append(names, hyp.Name)
		}

		h.text(strings.Join(names, ", "))
		h.raw("</p>")
	}

	h.raw(`</fieldset><div class="actions">`)
	h.submit("start", "开始训练")
	h.raw("</div></form></section>")
}

func trainingTasks(h *html, tasks []core.TrainingTaskSummary) {
	h.raw(`<section class="card"><h2>`)
	h.tr("训练任务")
	h.raw(`</h2><table class="tasks">`)
	h.th("任务", "状态", "进度", "创建时间", "")
	h.raw("<tbody>")

	for _, task := range tasks {
		h.raw("<tr")
		h.attr("data-status", task.Status)
		h.raw("><td><a")
		h.attr("href", "/training?task="+task.TaskID)
		h.raw(">")
		h.text(task.TaskID)
		h.raw("</a></td>")
		h.td(task.Status)
		h.td(formatPercent(task.Progress))
		h.td(task.CreatedAt)
		h.raw("<td>")

		if task.Status == "running" || task.Status == "pending" {
			h.raw(`<form method="post"`)
			h.attr("action", "/training/"+task.TaskID+"/stop")
			h.raw(`><button type="submit">`)
			h.tr("停止训练")
			h.raw("</button></form>")
		}

		h.raw("</td></tr>")
	}

	h.raw("</tbody></table></section>")
}

func trainingDetail(h *html, data TrainingData) {
	s := data.Status

	h.raw(`<section class="card task-detail"><h2>`)
	h.tr("任务")
	h.raw(" ")
	h.text(s.TaskID)
	h.raw("</h2><progress")
	h.attr("max", "100")
	h.attr("value", formatFloat(s.Progress, 1))
	h.raw("></progress><p>")
	h.text(s.Status)
	h.raw(" · ")
	h.text(fmt.Sprintf("%d / %d", s.CurrentEpoch, s.TotalEpochs))

	if s.Message != "" {
		h.raw(" · ")
		h.text(s.Message)
	}

	h.raw("</p>")

	if len(s.Metrics) > 0 {
		h.raw(`<dl class="metrics">`)

		for _, k := range slices.Sorted(maps.Keys(s.Metrics)) {
			h.raw("<dt>")
			h.text(k)
			h.raw("</dt><dd>")
			h.text(fmt.Sprint(s.Metrics[k]))
			h.raw("</dd>")
		}

		h.raw("</dl>")
	}

	if data.Output != nil && len(data.Output.Output) > 0 {
		h.raw(`<pre class="training-output">`)
		h.text(strings.Join(data.Output.Output, "\n"))
		h.raw("</pre>")
	}

	if r := data.Results; r != nil {
		h.raw(`<h3>`)
		h.tr("训练结果")
		h.raw(`</h3><dl class="results"><dt>`)
		h.tr("路径")
		h.raw("</dt><dd>")
		h.text(r.ResultsDir)
		h.raw("</dd>")

		for _, name := range slices.Sorted(maps.Keys(r.Weights)) {
			h.raw("<dt>")
			h.text(name)
			h.raw("</dt><dd>")
			h.text(r.Weights[name])
			h.raw("</dd>")
		}

		h.raw("</dl>")

		if n := len(r.MetricsHistory); n > 0 {
			last := r.MetricsHistory[n-1]

			h.raw(`<dl class="metrics final">`)

			for _, k := range slices.Sorted(maps.Keys(last)) {
				h.raw("<dt>")
				h.text(strings.TrimSpace(k))
				h.raw("</dt><dd>")
				h.text(fmt.Sprint(last[k]))
				h.raw("</dd>")
			}

			h.raw("</dl>")
		}
	}

	h.raw("</section>")
}
