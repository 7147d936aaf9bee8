// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"codeberg.org/detectfe/detectfe/assets/views"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/server/request_context"
	"codeberg.org/detectfe/detectfe/server/utils"
)

// TaskIDParam is the path wildcard of the stop route.
const TaskIDParam = "taskId"

const statusCompleted = "completed"

// TrainingView starts, lists, inspects and stops training tasks.
type TrainingView struct {
	api *core.API
}

func (v *TrainingView) Render(w http.ResponseWriter, r *http.Request) error {
	return v.render(w, r, &views.TrainingData{Config: core.DefaultTrainingConfig("")}, utils.GetQueryParam(r, "task"))
}

// Submit starts a training run, or stops the task named in the path of the stop route.
func (v *TrainingView) Submit(w http.ResponseWriter, r *http.Request) error {
	if taskID := r.PathValue(TaskIDParam); taskID != "" {
		return v.stop(w, r, taskID)
	}

	data := &views.TrainingData{Config: core.DefaultTrainingConfig("")}

	if err := utils.ParseForm(r); err != nil {
		settle(r, err)

		return v.render(w, r, data, "")
	}

	data.Config = trainingConfig(r)

	if action(r) != "start" {
		unsupportedAction(r)

		return v.render(w, r, data, "")
	}

	task, err := v.api.StartTraining(r.Context(), data.Config)
	if !settle(r, err) {
		return v.render(w, r, data, "")
	}

	notifySuccess(r, "训练已开始")

	return v.render(w, r, data, task.TaskID)
}

func (v *TrainingView) stop(w http.ResponseWriter, r *http.Request, taskID string) error {
	res, err := v.api.StopTraining(r.Context(), taskID)
	if settle(r, err) {
		if res.Success {
			notifySuccess(r, "训练已停止")
		} else {
			request_context.FromRequest(r).Notify(request_context.NoticeError, res.Message)
		}
	}

	return v.render(w, r, &views.TrainingData{Config: core.DefaultTrainingConfig("")}, taskID)
}

// render fetches the task list and choices concurrently, then the selected task's details.
func (v *TrainingView) render(w http.ResponseWriter, r *http.Request, data *views.TrainingData, taskID string) error {
	ctx := r.Context()
	data.Layout = layout(r)

	var g errgroup.Group

	g.Go(func() (err error) {
		data.Tasks, err = v.api.ListTrainingTasks(ctx)

		return err
	})

	g.Go(func() (err error) {
		data.Datasets, err = v.api.GetDatasets(ctx)

		return err
	})

	g.Go(func() (err error) {
		data.Hyperparameters, err = v.api.GetHyperparameters(ctx)

		return err
	})

	if taskID != "" {
		g.Go(func() error {
			return v.taskDetail(r, data, taskID)
		})
	}

	settle(r, g.Wait())

	return render(w, r, views.Training(*data))
}

// taskDetail fills the status and output of taskID, plus its results once completed.
func (v *TrainingView) taskDetail(r *http.Request, data *views.TrainingData, taskID string) error {
	ctx := r.Context()

	var (
		g      errgroup.Group
		status *core.TrainingStatus
	)

	g.Go(func() (err error) {
		status, err = v.api.GetTrainingStatus(ctx, taskID)

		return err
	})

	g.Go(func() (err error) {
		data.Output, err = v.api.GetTrainingOutput(ctx, taskID)

		return err
	})

	err := g.Wait()
	data.Status = status

	if err != nil || status == nil || status.Status != statusCompleted {
		return err
	}

	results, err := v.api.GetTrainingResults(ctx, taskID)
	data.Results = results

	return err
}

// trainingConfig reads a training config from the form over the backend defaults.
func trainingConfig(r *http.Request) core.TrainingConfig {
	cfg := core.DefaultTrainingConfig(utils.GetFormValue(r, "data_yaml"))

	cfg.Weights = utils.GetFormValue(r, "weights", cfg.Weights)
	cfg.Epochs = utils.FormInt(r, "epochs", cfg.Epochs)
	cfg.BatchSize = utils.FormInt(r, "batch_size", cfg.BatchSize)
	cfg.ImgSize = utils.FormInt(r, "img_size", cfg.ImgSize)
	cfg.LearningRate = utils.FormFloat(r, "learning_rate", cfg.LearningRate)
	cfg.Device = utils.GetFormValue(r, "device")
	cfg.Name = utils.GetFormValue(r, "name", cfg.Name)
	cfg.Optimizer = utils.GetFormValue(r, "optimizer", cfg.Optimizer)
	cfg.Patience = utils.FormInt(r, "patience", cfg.Patience)
	cfg.Workers = utils.FormInt(r, "workers", cfg.Workers)

	return cfg
}
