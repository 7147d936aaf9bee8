// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import "errors"

// ErrInvalidInput wraps errors for calls rejected before any request was
// sent. These never reach the request client, so nothing was notified.
var ErrInvalidInput = errors.New("invalid input")
