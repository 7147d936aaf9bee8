// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strings"
	"sync/atomic"

	"codeberg.org/detectfe/detectfe/config"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// Detectfe-Version and Detectfe-Revision are added dynamically in SetResponseHeaders.
	baseHeaders = http.Header{
		"Referrer-Policy":         {"no-referrer"},
		"X-Frame-Options":         {"DENY"},
		"X-Content-Type-Options":  {"nosniff"},
		"Permissions-Policy":      {strings.Join(defaultPermissionsPolicy, ", ")},
		"Content-Security-Policy": {strings.Join(csp, "; ") + ";"},
	}

	// Backend media is proxied through this server, so everything is same-origin.
	csp = []string{
		"base-uri 'self'",
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"script-src 'self'",
		"img-src 'self' data: blob:",
		"media-src 'self'",
		"connect-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}

	defaultPermissionsPolicy = []string{
		"accelerometer=()",
		"camera=()",
		"display-capture=()",
		"geolocation=()",
		"gyroscope=()",
		"magnetometer=()",
		"microphone=()",
		"payment=()",
		"usb=()",
		"xr-spatial-tracking=()",
	}
)

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	if config.Global.Development.InDevelopment {
		invalidateCacheInDevelopment(headers)
	}

	setCacheControl(headers, r.URL.Path)

	headers.Set("Detectfe-Version", config.BuildVersion)
	headers.Set("Detectfe-Revision", config.Global.Build.Revision())

	next.ServeHTTP(w, r)
}

var firstDevResponse atomic.Bool

// invalidateCacheInDevelopment clears the browser cache once per process in development.
func invalidateCacheInDevelopment(headers http.Header) {
	if firstDevResponse.CompareAndSwap(false, true) {
		headers.Set("Clear-Site-Data", `"cache"`)
	}
}

// setCacheControl sets cache control headers by path.
//
// Pages always revalidate since they show live training and dataset state.
// Static assets and proxied media may override this in their handlers.
func setCacheControl(headers http.Header, path string) {
	cacheDuration := "private, no-cache"

	// JavaScript and CSS get a moderate cache time (1 week)
	if strings.HasPrefix(path, "/js/") || strings.HasPrefix(path, "/css/") {
		cacheDuration = "max-age=604800"
	}

	if strings.HasSuffix(path, ".txt") {
		cacheDuration = "max-age=86400"
	}

	headers.Set("Cache-Control", cacheDuration)
}
