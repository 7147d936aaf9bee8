// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		requestURL       string
		expectedStatus   int
		expectedLocation string
	}{
		{
			name:           "Root path should not redirect",
			requestURL:     "/",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Page path should not redirect",
			requestURL:     "/training",
			expectedStatus: http.StatusOK,
		},
		{
			name:             "Trailing slash should redirect",
			requestURL:       "/dataset/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/dataset",
		},
		{
			name:             "Repeated trailing slashes collapse",
			requestURL:       "/export//",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/export",
		},
		{
			name:             "Query parameters are preserved",
			requestURL:       "/dataset/?name=coco&lang=en",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/dataset?name=coco&lang=en",
		},
		{
			name:           "Media file paths pass through",
			requestURL:     "/uploads/a.jpg",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Wrap(NormalizeURL, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.requestURL, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
		})
	}
}

func TestHasTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected bool
	}{
		{"/", false},
		{"/training", false},
		{"/training/", true},
		{"/training/abc/stop/", true},
		{"/debug/pprof/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, hasTrailingSlash(httptest.NewRequest(http.MethodGet, tt.path, nil)))
		})
	}
}
