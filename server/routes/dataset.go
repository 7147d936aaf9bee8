// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// DatasetView lists, creates, fills and deletes datasets.
type DatasetView struct {
	api *core.API
}

func (v *DatasetView) Render(w http.ResponseWriter, r *http.Request) error {
	return v.render(w, r, utils.GetQueryParam(r, "name"), utils.GetQueryParam(r, "split", core.DefaultSplit))
}

// Submit handles the create, upload and delete actions.
func (v *DatasetView) Submit(w http.ResponseWriter, r *http.Request) error {
	if err := utils.ParseForm(r); err != nil {
		settle(r, err)

		return v.render(w, r, "", core.DefaultSplit)
	}

	ctx := r.Context()
	name := utils.GetFormValue(r, "name")
	split := utils.GetFormValue(r, "split", core.DefaultSplit)

	switch action(r) {
	case "create":
		res, err := v.api.CreateDataset(ctx, core.NewDataset{
			Name:        name,
			Classes:     utils.FormList(r, "classes"),
			Description: utils.GetFormValue(r, "description"),
		})
		if !settle(r, err) {
			name = ""

			break
		}

		notifySuccess(r, "操作成功")

		name = res.Dataset.Name

	case "upload":
		files, err := utils.FormFiles(r, "images")
		if err != nil {
			return err
		}

		res, err := v.api.UploadDatasetImages(ctx, name, split, files)
		if settle(r, err) {
			notifySuccess(r, "已上传 {{.Uploaded}} 张, 失败 {{.Failed}} 张", "Uploaded", res.Uploaded, "Failed", res.Failed)
		}

	case "delete":
		if _, err := v.api.DeleteDataset(ctx, name); settle(r, err) {
			notifySuccess(r, "操作成功")
		}

		name = ""

	default:
		unsupportedAction(r)
	}

	return v.render(w, r, name, split)
}

// render fetches the dataset list and, when name is set, that dataset's detail and images.
func (v *DatasetView) render(w http.ResponseWriter, r *http.Request, name, split string) error {
	ctx := r.Context()
	data := views.DatasetData{Layout: layout(r), Split: split}

	var g errgroup.Group

	g.Go(func() (err error) {
		data.Datasets, err = v.api.ListDatasets(ctx)

		return err
	})

	if name != "" {
		g.Go(func() (err error) {
			data.Info, err = v.api.GetDatasetInfo(ctx, name)

			return err
		})

		g.Go(func() (err error) {
			data.Images, err = v.api.ListDatasetImages(ctx, name, split,
				utils.GetQueryInt(r, "page", core.DefaultPage), core.DefaultPageSize)

			return err
		})
	}

	settle(r, g.Wait())

	return render(w, r, views.Dataset(data))
}
