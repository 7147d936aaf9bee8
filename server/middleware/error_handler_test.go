// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/detectfe/detectfe/server/request_context"
)

// createTestRequest creates a test HTTP request with request context.
func createTestRequest(t *testing.T) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	return req.WithContext(request_context.WithRequestContext(req.Context(), req))
}

func pageTitle(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)

	return doc.Find("h1.page-title").Text()
}

func TestCatchErrorSuccess(t *testing.T) {
	handler := CatchError(func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success"}`))

		return nil
	})

	req := createTestRequest(t)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "success"}`, rr.Body.String())

	ctx := request_context.FromRequest(req)
	assert.NoError(t, ctx.RequestError)
	assert.Equal(t, http.StatusOK, ctx.StatusCode)
}

func TestCatchErrorHandlerError(t *testing.T) {
	testError := errors.New("test handler error")

	handler := CatchError(func(w http.ResponseWriter, _ *http.Request) error {
		// Partial output is discarded.
		_, _ = w.Write([]byte("half a page"))

		return testError
	})

	req := createTestRequest(t)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.NotContains(t, rr.Body.String(), "half a page")
	assert.Equal(t, "服务器错误", pageTitle(t, rr))

	ctx := request_context.FromRequest(req)
	assert.ErrorIs(t, ctx.RequestError, testError)
	assert.Equal(t, http.StatusInternalServerError, ctx.StatusCode)
}

func TestCatchErrorNotFound(t *testing.T) {
	handler := CatchError(func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusNotFound)

		return nil
	})

	req := createTestRequest(t)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "页面不存在", pageTitle(t, rr))
}

func TestCatchErrorPassesClientErrors(t *testing.T) {
	handler := CatchError(func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)

		return nil
	})

	req := createTestRequest(t)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
	assert.Empty(t, rr.Body.String())
}
