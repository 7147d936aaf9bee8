// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/detectfe/detectfe/server/middleware"
	"codeberg.org/detectfe/detectfe/server/request_context"
)

// capture runs req through WithRequestContext and returns what the next handler saw.
func capture(t *testing.T, req *http.Request) *request_context.RequestContext {
	t.Helper()

	var rc *request_context.RequestContext

	handler := middleware.Wrap(WithRequestContext, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc = request_context.FromRequest(r)

		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, rc, "next handler was not called")

	return rc
}

func TestWithRequestContextAttachesContext(t *testing.T) {
	t.Parallel()

	rc := capture(t, httptest.NewRequest(http.MethodGet, "/training", nil))

	assert.NotEmpty(t, rc.RequestID)
	assert.Equal(t, http.StatusOK, rc.StatusCode)
	assert.NoError(t, rc.RequestError)
	assert.False(t, rc.NoCache)
	assert.Empty(t, rc.Notices())
}

func TestWithRequestContextUniqueRequestIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)

	for range 3 {
		rc := capture(t, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, seen[rc.RequestID], "duplicate request ID %s", rc.RequestID)
		seen[rc.RequestID] = true
	}
}

func TestWithRequestContextNoCache(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	req.Header.Set("Cache-Control", "No-Cache")

	assert.True(t, capture(t, req).NoCache)
}

func TestWithRequestContextPreservesRequest(t *testing.T) {
	t.Parallel()

	var method, path string

	handler := middleware.Wrap(WithRequestContext, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/training/abc/stop", nil))

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/training/abc/stop", path)
}
