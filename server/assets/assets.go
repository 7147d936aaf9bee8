// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package assets provides access to the application's embedded static assets.
*/
package assets

import (
	"embed"
)

// FS provides access to the embedded file system.
//
// It is assigned by package main, which owns the go:embed directives.
var FS embed.FS
