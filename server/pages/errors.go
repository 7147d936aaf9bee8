// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pages

import "errors"

// ErrMissingLoader is returned by NewTable when a page has no loader.
var ErrMissingLoader = errors.New("no view loader for page")
