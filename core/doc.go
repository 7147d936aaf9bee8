// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package core exposes one function per endpoint of the detection backend and
parses the responses into structured data.

Every function takes already-shaped arguments and issues exactly one request
through a shared [requests.Client]:

	client, err := requests.NewClient(requests.Config{BaseURL: "http://localhost:8000/api"})
	if err != nil {
		panic(err)
	}

	api := core.NewAPI(client)

	info, err := api.GetSystemInfo(context.Background())
	if err != nil {
		panic(err)
	}

	fmt.Println(info.AppName, info.Version)

Failed calls are reported through the client's notifier and returned to the caller.
*/
package core
