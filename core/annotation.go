// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"strconv"
)

func (api *API) SaveAnnotations(ctx context.Context, set AnnotationSet) (*SaveAnnotationsResult, error) {
	if set.Annotations == nil {
		set.Annotations = []Annotation{}
	}

	var result SaveAnnotationsResult
	if err := api.do(ctx, call{endpoint: EndpointSaveAnnotations, json: set}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) GetAnnotations(ctx context.Context, imageID string) (*AnnotationSet, error) {
	var set AnnotationSet
	if err := api.do(ctx, call{endpoint: EndpointGetAnnotations, params: []string{imageID}}, &set); err != nil {
		return nil, err
	}

	return &set, nil
}

func (api *API) DeleteAnnotations(ctx context.Context, imageID string) (*MutationResult, error) {
	var result MutationResult
	if err := api.do(ctx, call{endpoint: EndpointDeleteAnnotations, params: []string{imageID}}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListAnnotations returns one page of annotated images. Non-positive values use the defaults.
func (api *API) ListAnnotations(ctx context.Context, page, pageSize int) (*AnnotationPage, error) {
	var result AnnotationPage
	if err := api.do(ctx, call{endpoint: EndpointListAnnotations, query: pageQuery(page, pageSize)}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) UpdateAnnotation(ctx context.Context, imageID string, annotationID int, annotation Annotation) (*MutationResult, error) {
	var result MutationResult

	c := call{
		endpoint: EndpointUpdateAnnotation,
		params:   []string{imageID, strconv.Itoa(annotationID)},
		json:     annotation,
	}

	if err := api.do(ctx, c, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) DeleteAnnotation(ctx context.Context, imageID string, annotationID int) (*MutationResult, error) {
	var result MutationResult

	c := call{
		endpoint: EndpointDeleteAnnotation,
		params:   []string{imageID, strconv.Itoa(annotationID)},
	}

	if err := api.do(ctx, c, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) AddAnnotation(ctx context.Context, imageID string, annotation Annotation) (*AddAnnotationResult, error) {
	var result AddAnnotationResult

	c := call{
		endpoint: EndpointAddAnnotation,
		params:   []string{imageID},
		json:     annotation,
	}

	if err := api.do(ctx, c, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
