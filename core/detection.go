// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"codeberg.org/detectfe/detectfe/core/requests"
)

var (
	errNoImages   = fmt.Errorf("%w: no images given", ErrInvalidInput)
	errNoImageURL = fmt.Errorf("%w: image URL is empty", ErrInvalidInput)
)

// detectForm writes the inference settings shared by every detection call.
func detectForm(params DetectParams) *requests.Form {
	defaults := DefaultDetectParams()

	if params.ConfThreshold <= 0 {
		params.ConfThreshold = defaults.ConfThreshold
	}

	if params.IoUThreshold <= 0 {
		params.IoUThreshold = defaults.IoUThreshold
	}

	if params.ImgSize <= 0 {
		params.ImgSize = defaults.ImgSize
	}

	if params.Weights == "" {
		params.Weights = defaults.Weights
	}

	return requests.NewForm().
		SetFloat("conf_threshold", params.ConfThreshold).
		SetFloat("iou_threshold", params.IoUThreshold).
		SetInt("img_size", params.ImgSize).
		Set("weights", params.Weights)
}

// Detect runs detection on a single image.
func (api *API) Detect(ctx context.Context, image requests.FormFile, params DetectParams) (*DetectionResult, error) {
	form := detectForm(params).AddFile("file", image)

	if len(params.Classes) > 0 {
		ids := make([]string, len(params.Classes))
		for i, id := range params.Classes {
			ids[i] = strconv.Itoa(id)
		}

		form.Set("classes", strings.Join(ids, ","))
	}

	var result DetectionResult
	if err := api.do(ctx, call{endpoint: EndpointDetect, form: form}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DetectBatch runs detection on several images in one call.
// Files the backend could not process come back with Error set.
func (api *API) DetectBatch(ctx context.Context, images []requests.FormFile, params DetectParams) (*BatchDetectionResult, error) {
	if len(images) == 0 {
		return nil, errNoImages
	}

	form := detectForm(params)
	for _, image := range images {
		form.AddFile("files", image)
	}

	var result BatchDetectionResult
	if err := api.do(ctx, call{endpoint: EndpointDetectBatch, form: form}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DetectFromURL has the backend fetch imageURL and run detection on it.
func (api *API) DetectFromURL(ctx context.Context, imageURL string, params DetectParams) (*DetectionResult, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, errNoImageURL
	}

	form := detectForm(params).Set("image_url", imageURL)

	var result DetectionResult
	if err := api.do(ctx, call{endpoint: EndpointDetectFromURL, form: form}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) GetWeights(ctx context.Context) ([]string, error) {
	var resp struct {
		Weights []string `json:"weights"`
	}

	if err := api.do(ctx, call{endpoint: EndpointWeights}, &resp); err != nil {
		return nil, err
	}

	return resp.Weights, nil
}

func (api *API) GetClasses(ctx context.Context) ([]ClassInfo, error) {
	var resp struct {
		Classes []ClassInfo `json:"classes"`
	}

	if err := api.do(ctx, call{endpoint: EndpointClasses}, &resp); err != nil {
		return nil, err
	}

	return resp.Classes, nil
}

// GetModelInfo describes the model loaded from weights, or the default weights if empty.
func (api *API) GetModelInfo(ctx context.Context, weights string) (*ModelInfo, error) {
	if weights == "" {
		weights = DefaultWeights
	}

	var info ModelInfo
	if err := api.do(ctx, call{endpoint: EndpointModelInfo, query: url.Values{"weights": {weights}}}, &info); err != nil {
		return nil, err
	}

	return &info, nil
}
