// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"codeberg.org/detectfe/detectfe/core/requests"
)

var (
	errDatasetNameEmpty = fmt.Errorf("%w: dataset name cannot be empty", ErrInvalidInput)
	errNoClasses        = fmt.Errorf("%w: dataset needs at least one class", ErrInvalidInput)
)

func (api *API) ListDatasets(ctx context.Context) ([]DatasetSummary, error) {
	var resp struct {
		Datasets []DatasetSummary `json:"datasets"`
	}

	if err := api.do(ctx, call{endpoint: EndpointListDatasets}, &resp); err != nil {
		return nil, err
	}

	return resp.Datasets, nil
}

func (api *API) GetDatasetInfo(ctx context.Context, name string) (*DatasetInfo, error) {
	if name == "" {
		return nil, errDatasetNameEmpty
	}

	var info DatasetInfo
	if err := api.do(ctx, call{endpoint: EndpointDatasetInfo, params: []string{name}}, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// CreateDataset creates an empty dataset with the train/val/test layout.
func (api *API) CreateDataset(ctx context.Context, ds NewDataset) (*CreateDatasetResult, error) {
	name := strings.TrimSpace(ds.Name)
	if name == "" {
		return nil, errDatasetNameEmpty
	}

	classes := make([]string, 0, len(ds.Classes))
	for _, c := range ds.Classes {
		if c = strings.TrimSpace(c); c != "" {
			classes = append(classes, c)
		}
	}

	if len(classes) == 0 {
		return nil, errNoClasses
	}

	form := requests.NewForm().
		Set("name", name).
		Set("classes", strings.Join(classes, ",")).
		SetOptional("description", ds.Description)

	var result CreateDatasetResult
	if err := api.do(ctx, call{endpoint: EndpointCreateDataset, form: form}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// UploadDatasetImages adds images to split, or to the train split if empty.
func (api *API) UploadDatasetImages(ctx context.Context, name, split string, images []requests.FormFile) (*UploadResult, error) {
	if name == "" {
		return nil, errDatasetNameEmpty
	}

	if len(images) == 0 {
		return nil, errNoImages
	}

	if split == "" {
		split = DefaultSplit
	}

	form := requests.NewForm()
	for _, image := range images {
		form.AddFile("files", image)
	}

	c := call{
		endpoint: EndpointUploadDatasetImages,
		params:   []string{name},
		query:    url.Values{"split": {split}},
		form:     form,
	}

	var result UploadResult
	if err := api.do(ctx, c, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) DeleteDataset(ctx context.Context, name string) (*MutationResult, error) {
	if name == "" {
		return nil, errDatasetNameEmpty
	}

	var result MutationResult
	if err := api.do(ctx, call{endpoint: EndpointDeleteDataset, params: []string{name}}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListDatasetImages returns one page of a split. Empty or non-positive arguments use the defaults.
func (api *API) ListDatasetImages(ctx context.Context, name, split string, page, pageSize int) (*DatasetImagePage, error) {
	if name == "" {
		return nil, errDatasetNameEmpty
	}

	if split == "" {
		split = DefaultSplit
	}

	query := pageQuery(page, pageSize)
	query.Set("split", split)

	var result DatasetImagePage
	if err := api.do(ctx, call{endpoint: EndpointListDatasetImages, params: []string{name}, query: query}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
