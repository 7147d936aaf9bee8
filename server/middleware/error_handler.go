// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/config"
	"codeberg.org/detectfe/detectfe/core/audit"
	"codeberg.org/detectfe/detectfe/server/request_context"
	"codeberg.org/detectfe/detectfe/server/routes"
)

// CatchError wraps HTTP handlers that return an error, providing centralized error handling,
// response buffering, and request logging.
//
// The handler's output is buffered in an httptest.ResponseRecorder and any
// returned error is stored in the request context. Then:
//   - If the handler returned an error without writing an error status
//     (status < 400), the buffered response is discarded and the themed
//     500 page is rendered.
//   - If the handler wrote 404 Not Found, the buffered response is discarded
//     and the themed 404 page is rendered.
//   - Otherwise the buffered response is written to the client as is.
//
// Backend failures that a page already showed as a toast are not errors here:
// page handlers swallow them and render with whatever data arrived.
//
// Finally, the completed request is logged via the audit package.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			Destination: audit.ToUser,
			RequestID:   ctx.RequestID,
			Method:      r.Method,
			URL:         r.URL.String(),
		}

		r = r.WithContext(span.Begin(r.Context()))
		defer span.End()

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		ctx.RequestError = err

		switch {
		case (ctx.RequestError != nil && recorder.Code < http.StatusBadRequest) || recorder.Code == http.StatusNotFound:
			if recorder.Code == http.StatusNotFound {
				ctx.StatusCode = http.StatusNotFound
			} else {
				ctx.StatusCode = http.StatusInternalServerError
			}

			routes.ErrorPage(w, r)

		default:
			if recorder.Code == 0 {
				recorder.Code = http.StatusOK
			}

			ctx.StatusCode = recorder.Code
			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}
		}

		span.StatusCode = ctx.StatusCode
		span.Error = ctx.RequestError

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}
