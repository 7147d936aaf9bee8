// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware chain of DetectFE and the
CatchError adapter that page handlers are registered through.

Route definitions live in (*router.Router).DefineRoutes.
*/
package middleware
