// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"net/http"
	"net/url"
)

// Options describe a single backend call.
type Options struct {
	Method string

	// Path is appended verbatim to the client's base URL.
	// A trailing slash is kept.
	Path  string
	Query url.Values

	// At most one of JSON and Form is set.
	JSON any
	Form *Form

	// Binary marks calls that expect a file rather than a JSON document.
	Binary bool
}

// Response is a settled backend response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Cached is true when the response was served from the response cache.
	Cached bool
}

// RequestInterceptor is run on every outgoing request before it is sent.
type RequestInterceptor func(req *http.Request) (*http.Request, error)

// ResponseInterceptor is run on every settled call before the caller sees it.
// resp is nil when no response arrived. The returned error replaces err.
type ResponseInterceptor func(ctx context.Context, resp *Response, err error) error
