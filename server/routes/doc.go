// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package routes implements the page views: each fetches what it shows through
the backend API and renders it with the components in assets/views.

A backend call that fails has already been shown to the user as a toast by
the request client, so views log it and render with whatever did arrive.
*/
package routes
