// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package requests is the HTTP client used to talk to the detection backend.

A single [Client] is shared by every page. Each call issues exactly one request
against the configured base URL with a fixed timeout. Request interceptors see
the outgoing *http.Request; response interceptors see every settled call, and
the default one reports failures through a [Notifier] before handing the error
back to the caller unchanged.

Successful GET responses can be cached; see [WithCache].
*/
package requests
