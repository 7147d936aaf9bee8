// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/i18n"
	"codeberg.org/detectfe/detectfe/server/pages"
	"codeberg.org/detectfe/detectfe/server/request_context"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// Loaders returns the view builders for the route table, keyed by page name.
func Loaders(api *core.API) map[string]pages.Loader {
	build := func(name string, v pages.View) pages.Loader {
		return func() pages.View {
			log.Debug().Str("page", name).Msg("Built view")

			return v
		}
	}

	return map[string]pages.Loader{
		"Home":          build("Home", &HomeView{api: api}),
		"Detection":     build("Detection", &DetectionView{api: api}),
		"Batch":         build("Batch", &BatchView{api: api}),
		"Training":      build("Training", &TrainingView{api: api}),
		"Dataset":       build("Dataset", &DatasetView{api: api}),
		"Preprocessing": build("Preprocessing", &PreprocessingView{api: api}),
		"Export":        build("Export", &ExportView{api: api}),
	}
}

// layout returns the shell data for the page being served.
func layout(r *http.Request) views.LayoutData {
	var data views.LayoutData

	current, ok := pages.Current(r.Context())
	if ok {
		data.Title = current.Title
	}

	for _, def := range pages.Definitions() {
		data.Nav = append(data.Nav, views.NavLink{
			Path:   def.Path,
			Title:  def.Title,
			Active: ok && def.Path == current.Path,
		})
	}

	return data
}

// render writes c as the HTML response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	return c.Render(r.Context(), w)
}

// notifySuccess queues a success toast with a translated message.
func notifySuccess(r *http.Request, msgid string, kv ...any) {
	request_context.FromRequest(r).Notify(request_context.NoticeSuccess, i18n.Tr(r.Context(), msgid, kv...))
}

// settle deals with the error of one backend call made for a page.
//
// Errors from the request client were already shown as a toast and are only
// logged. Input rejected before any request is shown here. It reports
// whether the call succeeded.
func settle(r *http.Request, err error) bool {
	if err == nil {
		return true
	}

	rc := request_context.FromRequest(r)

	if errors.Is(err, core.ErrInvalidInput) || errors.Is(err, utils.ErrBadForm) {
		rc.Notify(request_context.NoticeError, i18n.Tr(r.Context(), "输入无效"))
	}

	log.Debug().
		Err(err).
		Str("request_id", rc.RequestID).
		Msg("Backend call failed while building page")

	return false
}

// action returns the submitted action name.
func action(r *http.Request) string {
	return utils.GetFormValue(r, "action")
}

// unsupportedAction shows a toast for a POST whose action the page does not know.
func unsupportedAction(r *http.Request) {
	log.Debug().Str("action", action(r)).Str("path", r.URL.Path).Msg("Unsupported page action")

	request_context.FromRequest(r).Notify(request_context.NoticeError, i18n.Tr(r.Context(), "不支持的操作"))
}
