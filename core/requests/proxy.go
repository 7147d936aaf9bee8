// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// proxiedHeaders are copied from backend media responses.
var proxiedHeaders = []string{"Content-Type", "Content-Length", "Cache-Control", "Last-Modified", "ETag"}

// ProxyHandler serves r's path from the backend origin, for media such as
// uploaded images and export archives that the backend exposes outside its API.
func (c *Client) ProxyHandler(w http.ResponseWriter, r *http.Request) error {
	target := *c.origin
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", target.String(), err)
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		if isContextCanceled(err) {
			return nil
		}

		return fmt.Errorf("failed to proxy request to %s: %w", target.String(), err)
	}

	for _, name := range proxiedHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}

	w.WriteHeader(resp.StatusCode)

	if _, err := w.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}

	return nil
}

// isContextCanceled reports whether err comes from the user going away.
func isContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
