// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/core/requests"
)

var (
	errUnsupportedEndpoint = errors.New("unsupported endpoint method")
	errEmptyPathParam      = fmt.Errorf("%w: empty path parameter", ErrInvalidInput)
)

// API is the set of backend operations. It is safe for concurrent use.
type API struct {
	client *requests.Client
}

// NewAPI returns an API issuing its calls through client.
func NewAPI(client *requests.Client) *API {
	return &API{client: client}
}

// Client returns the underlying request client.
func (api *API) Client() *requests.Client {
	return api.client
}

// call is one invocation of an Endpoint.
type call struct {
	endpoint Endpoint
	params   []string
	query    url.Values
	json     any
	form     *requests.Form
}

// do issues c and decodes the JSON response into out.
func (api *API) do(ctx context.Context, c call, out any) error {
	ep := c.endpoint

	// An empty segment would address a different endpoint.
	for _, p := range c.params {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%s: %w: %s", ep.Name, errEmptyPathParam, ep.Path)
		}
	}

	path := ep.Expand(c.params...)

	var err error

	switch {
	case ep.Method == http.MethodGet:
		err = api.client.GetJSON(ctx, path, c.query, out)
	case ep.Body == MultipartBody:
		form := c.form
		if form == nil {
			form = requests.NewForm()
		}

		err = api.client.PostForm(ctx, path, c.query, form, out)
	case ep.Method == http.MethodPost:
		err = api.client.PostJSON(ctx, path, c.json, out)
	case ep.Method == http.MethodPut:
		err = api.client.PutJSON(ctx, path, c.json, out)
	case ep.Method == http.MethodDelete:
		err = api.client.Delete(ctx, path, out)
	default:
		err = fmt.Errorf("%w: %s %s", errUnsupportedEndpoint, ep.Method, ep.Path)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", ep.Name, err)
	}

	api.invalidate(ep)

	return nil
}

func (api *API) invalidate(ep Endpoint) {
	if len(ep.Invalidates) == 0 {
		return
	}

	if removed := api.client.InvalidatePrefixes(ep.Invalidates...); len(removed) > 0 {
		log.Debug().
			Str("endpoint", ep.Name).
			Int("count", len(removed)).
			Msg("Invalidated cached responses after mutation")
	}
}

// pageQuery builds the page and page_size parameters, applying defaults for non-positive values.
func pageQuery(page, pageSize int) url.Values {
	if page <= 0 {
		page = DefaultPage
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("page_size", fmt.Sprint(pageSize))

	return q
}
