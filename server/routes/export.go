// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// ExportView exports annotations, either as a download or into the backend's export directory.
type ExportView struct {
	api *core.API
}

func (v *ExportView) Render(w http.ResponseWriter, r *http.Request) error {
	return v.render(w, r, &views.ExportData{Format: core.ExportYOLO})
}

// Submit handles the download, export and clean actions.
//
// A successful download answers with the archive itself instead of a page.
func (v *ExportView) Submit(w http.ResponseWriter, r *http.Request) error {
	data := &views.ExportData{Format: core.ExportYOLO}

	if err := utils.ParseForm(r); err != nil {
		settle(r, err)

		return v.render(w, r, data)
	}

	ctx := r.Context()
	req := core.ExportRequest{
		ImageIDs:      utils.FormList(r, "image_ids"),
		Format:        core.ExportFormat(utils.GetFormValue(r, "format", string(core.ExportYOLO))),
		IncludeImages: utils.FormBool(r, "include_images"),
	}
	data.Format = req.Format

	switch action(r) {
	case "download":
		archive, err := v.api.DownloadExport(ctx, req)
		if settle(r, err) {
			return writeArchive(w, archive)
		}

	case "export":
		res, err := v.api.ExportAnnotations(ctx, req)
		if settle(r, err) {
			data.Result = res
		}

	case "clean":
		res, err := v.api.CleanExports(ctx)
		if settle(r, err) {
			data.Cleaned = res
		}

	default:
		unsupportedAction(r)
	}

	return v.render(w, r, data)
}

func (v *ExportView) render(w http.ResponseWriter, r *http.Request, data *views.ExportData) error {
	ctx := r.Context()
	data.Layout = layout(r)

	var g errgroup.Group

	g.Go(func() (err error) {
		data.Formats, err = v.api.GetExportFormats(ctx)

		return err
	})

	g.Go(func() (err error) {
		data.Annotations, err = v.api.ListAnnotations(ctx, core.DefaultPage, core.DefaultPageSize)

		return err
	})

	settle(r, g.Wait())

	return render(w, r, views.Export(*data))
}

// writeArchive passes the backend's archive through unchanged.
func writeArchive(w http.ResponseWriter, archive *core.ExportArchive) error {
	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": archive.Filename}))
	w.Header().Set("Cache-Control", "no-store")

	if _, err := w.Write(archive.Data); err != nil {
		return fmt.Errorf("failed to write export archive: %w", err)
	}

	return nil
}
