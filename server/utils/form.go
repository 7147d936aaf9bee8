// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/detectfe/detectfe/core/requests"
)

// MaxUploadSize bounds the memory used for multipart uploads; larger parts spill to disk.
const MaxUploadSize = 32 << 20

// ErrBadForm is returned when a submitted form cannot be read.
var ErrBadForm = errors.New("malformed form")

// ParseForm parses urlencoded and multipart bodies alike.
func ParseForm(r *http.Request) error {
	err := r.ParseMultipartForm(MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadForm, err)
	}

	return nil
}

// GetQueryParam retrieves the value of a query parameter by name.
//
// If the parameter is not present, it returns the provided default value or an empty string.
func GetQueryParam(r *http.Request, name string, defaultValue ...string) string {
	v := r.URL.Query().Get(name)
	if v != "" {
		return v
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// GetFormValue returns the trimmed form value, or defaultValue when empty.
// The form must already be parsed.
func GetFormValue(r *http.Request, name string, defaultValue ...string) string {
	if v := strings.TrimSpace(r.Form.Get(name)); v != "" {
		return v
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// GetQueryInt returns a positive integer query parameter, or def.
func GetQueryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}

	return n
}

// FormInt returns an integer form value, or def when absent or malformed.
func FormInt(r *http.Request, name string, def int) int {
	if p := OptionalInt(r, name); p != nil {
		return *p
	}

	return def
}

// FormFloat returns a float form value, or def when absent or malformed.
func FormFloat(r *http.Request, name string, def float64) float64 {
	if p := OptionalFloat(r, name); p != nil {
		return *p
	}

	return def
}

// OptionalInt returns nil when the field is absent or malformed.
func OptionalInt(r *http.Request, name string) *int {
	n, err := strconv.Atoi(GetFormValue(r, name))
	if err != nil {
		return nil
	}

	return &n
}

// OptionalFloat returns nil when the field is absent or malformed.
func OptionalFloat(r *http.Request, name string) *float64 {
	f, err := strconv.ParseFloat(GetFormValue(r, name), 64)
	if err != nil {
		return nil
	}

	return &f
}

// FormBool reports whether a checkbox was ticked.
func FormBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(GetFormValue(r, name))

	return b
}

// FormList collects a repeated field. Each value may itself be a comma separated list.
func FormList(r *http.Request, name string) []string {
	var out []string

	for _, v := range r.Form[name] {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// FormFiles reads every file uploaded under name into memory.
// Empty file inputs yield no files.
func FormFiles(r *http.Request, name string) ([]requests.FormFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[name]
	files := make([]requests.FormFile, 0, len(headers))

	for _, fh := range headers {
		if fh.Filename == "" || fh.Size == 0 {
			continue
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}

		content, err := io.ReadAll(f)
		_ = f.Close()

		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}

		files = append(files, requests.FormFile{Filename: fh.Filename, Content: content})
	}

	return files, nil
}
