// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
)

// HomeView shows backend system information and health.
type HomeView struct {
	api *core.API
}

func (v *HomeView) Render(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	data := views.HomeData{Layout: layout(r)}

	var g errgroup.Group

	g.Go(func() (err error) {
		data.Info, err = v.api.GetSystemInfo(ctx)

		return err
	})

	g.Go(func() (err error) {
		data.Health, err = v.api.HealthCheck(ctx)

		return err
	})

	settle(r, g.Wait())

	return render(w, r, views.Home(data))
}
