// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GetJSON performs a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, Options{Method: http.MethodGet, Path: path, Query: query}, out)
}

// PostJSON posts payload as JSON and decodes the JSON body into out.
// A nil payload sends an empty body.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	return c.call(ctx, Options{Method: http.MethodPost, Path: path, JSON: payload}, out)
}

// PutJSON is PostJSON with the PUT method.
func (c *Client) PutJSON(ctx context.Context, path string, payload, out any) error {
	return c.call(ctx, Options{Method: http.MethodPut, Path: path, JSON: payload}, out)
}

// Delete performs a DELETE and decodes the JSON body into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Options{Method: http.MethodDelete, Path: path}, out)
}

// PostForm posts form as multipart/form-data and decodes the JSON body into out.
func (c *Client) PostForm(ctx context.Context, path string, query url.Values, form *Form, out any) error {
	return c.call(ctx, Options{Method: http.MethodPost, Path: path, Query: query, Form: form}, out)
}

// Download posts payload as JSON and returns the raw file in the response.
func (c *Client) Download(ctx context.Context, path string, payload any) (*Response, error) {
	return c.Do(ctx, Options{Method: http.MethodPost, Path: path, JSON: payload, Binary: true})
}

func (c *Client) call(ctx context.Context, opts Options, out any) error {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", errInvalidJSON, opts.Method, opts.Path, err)
	}

	return nil
}
