// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"fmt"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"codeberg.org/detectfe/detectfe/config"
	"codeberg.org/detectfe/detectfe/core/requests"
	"codeberg.org/detectfe/detectfe/server/assets"
	"codeberg.org/detectfe/detectfe/server/middleware"
	"codeberg.org/detectfe/detectfe/server/pages"
	"codeberg.org/detectfe/detectfe/server/routes"
)

// mediaPrefixes are the backend's static mounts, proxied as is.
var mediaPrefixes = []string{"/uploads/", "/exports/", "/datasets/", "/custom_datasets/"}

// DefineRoutes sets up all the routes for the application using our custom Router.
//
// It does not add middleware; see RegisterMiddleware.
func (router *Router) DefineRoutes(table *pages.Table, client *requests.Client) {
	fileServerHandler := fileServer()

	router.Handle("GET /robots.txt", fileServerHandler)
	router.Handle("GET /css/", fileServerHandler)

	for _, prefix := range mediaPrefixes {
		router.HandleFunc("GET "+prefix, middleware.CatchError(client.ProxyHandler))
	}

	for _, page := range table.Pages() {
		pattern := page.Path
		if pattern == "/" {
			// /{$} matches only the root path
			pattern = "/{$}"
		}

		router.HandleFunc("GET "+pattern, middleware.CatchError(pageHandler(table)))
		router.HandleFunc("POST "+pattern, middleware.CatchError(submitHandler(page)))
	}

	training, ok := table.Match("/training")
	if !ok {
		panic("route table has no training page")
	}

	router.HandleFunc("POST /training/{"+routes.TaskIDParam+"}/stop", middleware.CatchError(submitHandler(training)))

	// Everything else is a themed 404.
	router.HandleFunc("/", middleware.CatchError(routes.NotFound))

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

// pageHandler renders the page registered at the request path.
func pageHandler(table *pages.Table) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		page, ok := table.Match(r.URL.Path)
		if !ok {
			return routes.NotFound(w, r)
		}

		return page.View().Render(w, r.WithContext(pages.WithPage(r.Context(), page)))
	}
}

// submitHandler passes a form POST to page's view.
func submitHandler(page pages.Page) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		submitter, ok := page.View().(pages.Submitter)
		if !ok {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)

			return nil
		}

		return submitter.Submit(w, r.WithContext(pages.WithPage(r.Context(), page)))
	}
}

// Serve static files from embedded assets.
func fileServer() http.HandlerFunc {
	staticContentFS, err := fs.Sub(assets.FS, "assets")
	if err != nil {
		panic(fmt.Errorf("failed to create sub-filesystem for embedded 'assets' directory: %w", err))
	}

	fileServer := http.FileServer(http.FS(staticContentFS))
	fileServerHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=3600")
		// Using a strong ETag for static files embedded via go:embed
		// ref: https://www.rfc-editor.org/rfc/rfc9110#weak.and.strong.validators
		//
		// Since go:embed requires rebuilding when files change, we use a per-instance
		// cache ID to ensure browsers fetch fresh content after any deployment.
		w.Header().Set("ETag", `"`+config.Global.Instance.FileServerCacheID+`"`)
		fileServer.ServeHTTP(w, r)
	})

	return fileServerHandler
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	if err := flightRecorder.Start(); err != nil {
		panic(err)
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
