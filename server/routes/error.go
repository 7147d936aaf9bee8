// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/config"
	"codeberg.org/detectfe/detectfe/server/request_context"
)

// ErrorPage writes the themed error page for the status and error stored in the request context.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	rc := request_context.FromRequest(r)

	title := "服务器错误"
	if rc.StatusCode == http.StatusNotFound {
		title = "页面不存在"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(rc.StatusCode)

	shell := layout(r)
	shell.Title = title

	pageData := views.ErrorData{
		Layout:      shell,
		StatusCode:  rc.StatusCode,
		Error:       rc.RequestError,
		ShowDetails: config.Global.Development.InDevelopment,
	}

	if err := views.Error(pageData).Render(r.Context(), w); err != nil {
		log.Err(err).Msg("Failed to render the error page")
	}
}

// NotFound is the fallback for paths outside the route table.
func NotFound(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNotFound)

	return nil
}
