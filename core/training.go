// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
)

var errNoDataYAML = fmt.Errorf("%w: training config has no dataset configuration", ErrInvalidInput)

// StartTraining queues a training run and returns its task.
func (api *API) StartTraining(ctx context.Context, cfg TrainingConfig) (*TrainingTask, error) {
	if cfg.DataYAML == "" {
		return nil, errNoDataYAML
	}

	var task TrainingTask
	if err := api.do(ctx, call{endpoint: EndpointStartTraining, json: cfg}, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (api *API) GetTrainingStatus(ctx context.Context, taskID string) (*TrainingStatus, error) {
	var status TrainingStatus
	if err := api.do(ctx, call{endpoint: EndpointTrainingStatus, params: []string{taskID}}, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (api *API) GetTrainingOutput(ctx context.Context, taskID string) (*TrainingOutput, error) {
	var output TrainingOutput
	if err := api.do(ctx, call{endpoint: EndpointTrainingOutput, params: []string{taskID}}, &output); err != nil {
		return nil, err
	}

	return &output, nil
}

// StopTraining asks the backend to stop a running task.
// A task that cannot be stopped is reported with Success false, not an error.
func (api *API) StopTraining(ctx context.Context, taskID string) (*MutationResult, error) {
	var result MutationResult
	if err := api.do(ctx, call{endpoint: EndpointStopTraining, params: []string{taskID}}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (api *API) ListTrainingTasks(ctx context.Context) (*TrainingTaskList, error) {
	var list TrainingTaskList
	if err := api.do(ctx, call{endpoint: EndpointListTraining}, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

func (api *API) GetTrainingResults(ctx context.Context, taskID string) (*TrainingResults, error) {
	var results TrainingResults
	if err := api.do(ctx, call{endpoint: EndpointTrainingResults, params: []string{taskID}}, &results); err != nil {
		return nil, err
	}

	return &results, nil
}

// GetDatasets lists the dataset YAML files available for training.
func (api *API) GetDatasets(ctx context.Context) ([]TrainingDataset, error) {
	var resp struct {
		Datasets []TrainingDataset `json:"datasets"`
	}

	if err := api.do(ctx, call{endpoint: EndpointTrainingDatasets}, &resp); err != nil {
		return nil, err
	}

	return resp.Datasets, nil
}

func (api *API) GetHyperparameters(ctx context.Context) ([]Hyperparameters, error) {
	var resp struct {
		Hyperparameters []Hyperparameters `json:"hyperparameters"`
	}

	if err := api.do(ctx, call{endpoint: EndpointHyperparameters}, &resp); err != nil {
		return nil, err
	}

	return resp.Hyperparameters, nil
}
