// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"mime"
)

const defaultArchiveName = "annotations.zip"

// ExportAnnotations writes the export on the backend and reports what it produced.
func (api *API) ExportAnnotations(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	req = normalizeExport(req)

	var result ExportResult
	if err := api.do(ctx, call{endpoint: EndpointExport, json: req}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DownloadExport exports and returns the resulting zip archive.
func (api *API) DownloadExport(ctx context.Context, req ExportRequest) (*ExportArchive, error) {
	req = normalizeExport(req)

	resp, err := api.client.Download(ctx, EndpointDownloadExport.Expand(), req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EndpointDownloadExport.Name, err)
	}

	archive := &ExportArchive{
		Filename:    defaultArchiveName,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		archive.Filename = params["filename"]
	}

	if archive.ContentType == "" {
		archive.ContentType = "application/zip"
	}

	return archive, nil
}

func (api *API) GetExportFormats(ctx context.Context) ([]ExportFormatInfo, error) {
	var resp struct {
		Formats []ExportFormatInfo `json:"formats"`
	}

	if err := api.do(ctx, call{endpoint: EndpointExportFormats}, &resp); err != nil {
		return nil, err
	}

	return resp.Formats, nil
}

// CleanExports removes every export the backend has written.
func (api *API) CleanExports(ctx context.Context) (*CleanResult, error) {
	var result CleanResult
	if err := api.do(ctx, call{endpoint: EndpointCleanExports}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func normalizeExport(req ExportRequest) ExportRequest {
	if req.Format == "" {
		req.Format = ExportYOLO
	}

	if req.ImageIDs == nil {
		req.ImageIDs = []string{}
	}

	return req
}
