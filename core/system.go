// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import "context"

func (api *API) GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	var info SystemInfo
	if err := api.do(ctx, call{endpoint: EndpointSystemInfo}, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

func (api *API) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := api.do(ctx, call{endpoint: EndpointHealthCheck}, &status); err != nil {
		return nil, err
	}

	return &status, nil
}
