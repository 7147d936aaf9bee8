// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// PreprocessingView runs quality checks and augmentation on uploaded images.
type PreprocessingView struct {
	api *core.API
}

func (v *PreprocessingView) Render(w http.ResponseWriter, r *http.Request) error {
	return render(w, r, views.Preprocessing(views.PreprocessingData{
		Layout:        layout(r),
		BlurThreshold: core.DefaultBlurThreshold,
	}))
}

// Submit handles the quality and augment actions. One uploaded image uses the
// single-image endpoint; several use the batch endpoint.
func (v *PreprocessingView) Submit(w http.ResponseWriter, r *http.Request) error {
	data := views.PreprocessingData{BlurThreshold: core.DefaultBlurThreshold}

	if err := utils.ParseForm(r); err != nil {
		settle(r, err)
	} else if err := v.submit(r, &data); err != nil {
		return err
	}

	data.Layout = layout(r)

	return render(w, r, views.Preprocessing(data))
}

func (v *PreprocessingView) submit(r *http.Request, data *views.PreprocessingData) error {
	ctx := r.Context()

	files, err := utils.FormFiles(r, "images")
	if err != nil {
		return err
	}

	switch action(r) {
	case "quality":
		data.BlurThreshold = utils.FormFloat(r, "blur_threshold", core.DefaultBlurThreshold)

		if len(files) == 1 {
			report, err := v.api.CheckQuality(ctx, files[0], data.BlurThreshold)
			if settle(r, err) {
				data.Quality = singleQualityReport(*report)
			}

			return nil
		}

		report, err := v.api.BatchQualityCheck(ctx, files, data.BlurThreshold)
		if settle(r, err) {
			data.Quality = report
		}

	case "augment":
		if len(files) == 1 {
			res, err := v.api.AugmentImage(ctx, files[0], augmentOptions(r))
			if settle(r, err) {
				data.Augment = res
			}

			return nil
		}

		res, err := v.api.BatchAugment(ctx, files, augmentOperations(r))
		if settle(r, err) {
			data.BatchAugment = res
		}

	default:
		unsupportedAction(r)
	}

	return nil
}

// singleQualityReport presents one report like a batch of one.
func singleQualityReport(q core.QualityReport) *core.BatchQualityReport {
	out := &core.BatchQualityReport{
		Results:     []core.QualityReport{q},
		Total:       1,
		QualityRate: 100,
	}

	if q.IsBlurry {
		out.BlurryCount = 1
		out.QualityRate = 0
	}

	return out
}

func augmentOptions(r *http.Request) core.AugmentOptions {
	return core.AugmentOptions{
		ResizeWidth:    utils.OptionalInt(r, "resize_width"),
		ResizeHeight:   utils.OptionalInt(r, "resize_height"),
		Rotate:         utils.OptionalFloat(r, "rotate"),
		FlipHorizontal: utils.FormBool(r, "flip_horizontal"),
		FlipVertical:   utils.FormBool(r, "flip_vertical"),
		Brightness:     utils.OptionalFloat(r, "brightness"),
		Contrast:       utils.OptionalFloat(r, "contrast"),
		Saturation:     utils.OptionalFloat(r, "saturation"),
		HueShift:       utils.OptionalInt(r, "hue_shift"),
	}
}

// augmentOperations is the subset of options batch augmentation supports.
func augmentOperations(r *http.Request) core.AugmentOperations {
	ops := core.AugmentOperations{
		Rotate:         utils.OptionalFloat(r, "rotate"),
		FlipHorizontal: utils.FormBool(r, "flip_horizontal"),
		Brightness:     utils.OptionalFloat(r, "brightness"),
		Contrast:       utils.OptionalFloat(r, "contrast"),
	}

	width, height := utils.OptionalInt(r, "resize_width"), utils.OptionalInt(r, "resize_height")
	if width != nil && height != nil {
		ops.Resize = []int{*width, *height}
	}

	return ops
}
