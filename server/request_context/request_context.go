// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package request_context provides per-request state shared between middleware,
page handlers and the backend request client.

This package is separate because Go disallows a cyclic import graph.
*/
package request_context

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"codeberg.org/detectfe/detectfe/core/idgen"
	"codeberg.org/detectfe/detectfe/i18n"
)

// NoticeLevel is the severity of a toast notification.
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeSuccess NoticeLevel = "success"
)

// Notice is a message shown to the user as a toast on the rendered page.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// RequestContext carries request-scoped data through the middleware chain.
//
// It is safe for concurrent use by the goroutines serving one request, since
// page handlers fetch backend data in parallel and each call may add notices.
type RequestContext struct {
	// RequestID is an identifier for tracing requests.
	RequestID string

	// Holds any critical error encountered during request processing.
	//
	// Populated by middleware.CatchError when handlers return errors.
	RequestError error

	// HTTP status code to be sent in the response. Defaults to 200 OK.
	StatusCode int

	// NoCache is set when the user agent asked for fresh content;
	// the backend client then bypasses its response cache.
	NoCache bool

	// T is the negotiated display language.
	T language.Tag

	mu      sync.Mutex
	notices []Notice
}

// Notify queues a notice for display on the page being rendered.
func (rc *RequestContext) Notify(level NoticeLevel, message string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.notices = append(rc.notices, Notice{Level: level, Message: message})
}

// Notices returns a snapshot of the queued notices in insertion order.
func (rc *RequestContext) Notices() []Notice {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return append([]Notice(nil), rc.notices...)
}

type requestContextKeyType struct{}

var requestContextKey = requestContextKeyType{}

// WithRequestContext initializes a new request context and attaches it to the parent context.
//
// This is called once per request, early in the middleware chain.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	ctx = i18n.WithRequest(ctx, r)

	rc := &RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
		NoCache:    strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache"),
		T:          i18n.TagFrom(ctx),
	}

	return context.WithValue(ctx, requestContextKey, rc)
}

// FromContext extracts the RequestContext from a context, always returning a valid pointer.
//
// If none is attached, a detached zero-value instance is returned, so writes to it are lost.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey).(*RequestContext); ok {
		return rc
	}

	return &RequestContext{StatusCode: http.StatusOK}
}

// FromRequest is a convenience wrapper for extracting RequestContext from an *http.Request.
func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
