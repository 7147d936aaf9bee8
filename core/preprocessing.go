// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"encoding/json"
	"fmt"

	"codeberg.org/detectfe/detectfe/core/requests"
)

// AugmentImage applies opts to a single image.
func (api *API) AugmentImage(ctx context.Context, image requests.FormFile, opts AugmentOptions) (*AugmentResult, error) {
	form := requests.NewForm().AddFile("file", image)

	if opts.ResizeWidth != nil {
		form.SetInt("resize_width", *opts.ResizeWidth)
	}

	if opts.ResizeHeight != nil {
		form.SetInt("resize_height", *opts.ResizeHeight)
	}

	if opts.Rotate != nil {
		form.SetFloat("rotate", *opts.Rotate)
	}

	form.SetBool("flip_horizontal", opts.FlipHorizontal).
		SetBool("flip_vertical", opts.FlipVertical)

	for _, field := range []struct {
		name  string
		value *float64
	}{
		{"brightness", opts.Brightness},
		{"contrast", opts.Contrast},
		{"saturation", opts.Saturation},
	} {
		if field.value != nil {
			form.SetFloat(field.name, *field.value)
		}
	}

	if opts.HueShift != nil {
		form.SetInt("hue_shift", *opts.HueShift)
	}

	var result AugmentResult
	if err := api.do(ctx, call{endpoint: EndpointAugment, form: form}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// BatchAugment applies the same operations to every image.
func (api *API) BatchAugment(ctx context.Context, images []requests.FormFile, ops AugmentOperations) (*BatchAugmentResult, error) {
	if len(images) == 0 {
		return nil, errNoImages
	}

	encoded, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to encode augment operations: %w", err)
	}

	form := requests.NewForm()
	for _, image := range images {
		form.AddFile("files", image)
	}

	form.Set("operations", string(encoded))

	var result BatchAugmentResult
	if err := api.do(ctx, call{endpoint: EndpointBatchAugment, form: form}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// CheckQuality scores the sharpness of image. A non-positive threshold uses the default.
func (api *API) CheckQuality(ctx context.Context, image requests.FormFile, blurThreshold float64) (*QualityReport, error) {
	form := requests.NewForm().
		AddFile("file", image).
		SetFloat("blur_threshold", blurThresholdOrDefault(blurThreshold))

	var report QualityReport
	if err := api.do(ctx, call{endpoint: EndpointQualityCheck, form: form}, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

func (api *API) BatchQualityCheck(ctx context.Context, images []requests.FormFile, blurThreshold float64) (*BatchQualityReport, error) {
	if len(images) == 0 {
		return nil, errNoImages
	}

	form := requests.NewForm()
	for _, image := range images {
		form.AddFile("files", image)
	}

	form.SetFloat("blur_threshold", blurThresholdOrDefault(blurThreshold))

	var report BatchQualityReport
	if err := api.do(ctx, call{endpoint: EndpointBatchQualityCheck, form: form}, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

func blurThresholdOrDefault(v float64) float64 {
	if v <= 0 {
		return DefaultBlurThreshold
	}

	return v
}
