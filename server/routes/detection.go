// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// DetectionView runs single-image detection and manages saved annotations.
type DetectionView struct {
	api *core.API
}

func (v *DetectionView) Render(w http.ResponseWriter, r *http.Request) error {
	return v.render(w, r, &views.DetectionData{Params: detectParams(r)})
}

// Submit handles the detect, detect-url, save and delete-annotations actions.
func (v *DetectionView) Submit(w http.ResponseWriter, r *http.Request) error {
	data := &views.DetectionData{Params: core.DefaultDetectParams()}

	if err := utils.ParseForm(r); err != nil {
		settle(r, err)

		return v.render(w, r, data)
	}

	data.Params = detectParams(r)
	ctx := r.Context()

	switch action(r) {
	case "detect":
		files, err := utils.FormFiles(r, "image")
		if err != nil {
			return err
		}

		if len(files) == 0 {
			settle(r, fmt.Errorf("%w: no image uploaded", core.ErrInvalidInput))

			break
		}

		result, err := v.api.Detect(ctx, files[0], data.Params)
		if settle(r, err) {
			data.Result = result
		}

	case "detect-url":
		result, err := v.api.DetectFromURL(ctx, utils.GetFormValue(r, "image_url"), data.Params)
		if settle(r, err) {
			data.Result = result
		}

	case "save":
		var set core.AnnotationSet
		if err := json.Unmarshal([]byte(utils.GetFormValue(r, "annotations")), &set); err != nil {
			settle(r, fmt.Errorf("%w: %w", utils.ErrBadForm, err))

			break
		}

		res, err := v.api.SaveAnnotations(ctx, set)
		if settle(r, err) {
			notifySuccess(r, "标注已保存 ({{.Count}})", "Count", res.AnnotationCount)
		}

	case "delete-annotations":
		_, err := v.api.DeleteAnnotations(ctx, utils.GetFormValue(r, "image_id"))
		if settle(r, err) {
			notifySuccess(r, "操作成功")
		}

	default:
		unsupportedAction(r)
	}

	if data.Result != nil {
		encoded, err := json.Marshal(core.AnnotationsFromDetections(*data.Result))
		if err != nil {
			return fmt.Errorf("failed to encode annotations: %w", err)
		}

		data.Annotations = string(encoded)
	}

	return v.render(w, r, data)
}

// render fetches the model choices and saved annotations, then renders data.
func (v *DetectionView) render(w http.ResponseWriter, r *http.Request, data *views.DetectionData) error {
	ctx := r.Context()
	data.Layout = layout(r)

	var g errgroup.Group

	g.Go(func() (err error) {
		data.Weights, err = v.api.GetWeights(ctx)

		return err
	})

	g.Go(func() (err error) {
		data.Classes, err = v.api.GetClasses(ctx)

		return err
	})

	g.Go(func() (err error) {
		data.Model, err = v.api.GetModelInfo(ctx, data.Params.Weights)

		return err
	})

	g.Go(func() (err error) {
		data.Saved, err = v.api.ListAnnotations(ctx,
			utils.GetQueryInt(r, "page", core.DefaultPage), core.DefaultPageSize)

		return err
	})

	settle(r, g.Wait())

	return render(w, r, views.Detection(*data))
}

// detectParams reads inference settings from the form, falling back to the backend defaults.
func detectParams(r *http.Request) core.DetectParams {
	p := core.DefaultDetectParams()

	p.ConfThreshold = utils.FormFloat(r, "conf_threshold", p.ConfThreshold)
	p.IoUThreshold = utils.FormFloat(r, "iou_threshold", p.IoUThreshold)
	p.ImgSize = utils.FormInt(r, "img_size", p.ImgSize)
	p.Weights = utils.GetFormValue(r, "weights", utils.GetQueryParam(r, "weights", p.Weights))

	for _, s := range utils.FormList(r, "classes") {
		if id, err := strconv.Atoi(s); err == nil {
			p.Classes = append(p.Classes, id)
		}
	}

	return p
}
