// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// BatchView runs detection over several uploaded images at once.
type BatchView struct {
	api *core.API
}

func (v *BatchView) Render(w http.ResponseWriter, r *http.Request) error {
	return v.render(w, r, &views.BatchData{Params: core.DefaultDetectParams()})
}

// Submit uploads every selected image to batch detection.
func (v *BatchView) Submit(w http.ResponseWriter, r *http.Request) error {
	data := &views.BatchData{Params: core.DefaultDetectParams()}

	if err := utils.ParseForm(r); err != nil {
		settle(r, err)

		return v.render(w, r, data)
	}

	data.Params = detectParams(r)

	if action(r) != "detect" {
		unsupportedAction(r)

		return v.render(w, r, data)
	}

	files, err := utils.FormFiles(r, "images")
	if err != nil {
		return err
	}

	result, err := v.api.DetectBatch(r.Context(), files, data.Params)
	if settle(r, err) {
		data.Result = result
	}

	return v.render(w, r, data)
}

func (v *BatchView) render(w http.ResponseWriter, r *http.Request, data *views.BatchData) error {
	data.Layout = layout(r)

	weights, err := v.api.GetWeights(r.Context())
	if settle(r, err) {
		data.Weights = weights
	}

	return render(w, r, views.Batch(*data))
}
