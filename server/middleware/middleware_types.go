// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import "net/http"

// Middleware runs around next. It decides whether and how next is called.
type Middleware func(w http.ResponseWriter, r *http.Request, next http.Handler)

// Wrap turns m into a handler with next fixed.
func Wrap(m Middleware, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m(w, r, next)
	}
}
