// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// FallbackMessage is shown when a failed call carries no usable text.
const FallbackMessage = "请求失败"

var (
	errStatus       = errors.New("request failed with status code")
	errInvalidJSON  = errors.New("response contained invalid JSON")
	errConflictBody = errors.New("options set both JSON and Form")
	errInvalidBase  = errors.New("backend base URL is not an absolute URL")
	errInterceptor  = errors.New("request interceptor returned no request")
)

// APIError is a backend response with a status code of 400 or above.
type APIError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int

	// Message is the detail field of the error body, if it had one.
	Message string

	// Err is the underlying cause.
	Err error
}

// Error returns the cause followed by the backend's detail, if any.
func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Err
}

func newStatusError(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    detailFrom(body),
		Err:        fmt.Errorf("%w %d", errStatus, statusCode),
	}
}

// MessageFor returns the text to show the user for err.
//
// The backend's detail wins, then the error's own text, then [FallbackMessage].
func MessageFor(err error) string {
	if err == nil {
		return FallbackMessage
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}

		if apiErr.Err != nil && apiErr.Err.Error() != "" {
			return apiErr.Err.Error()
		}

		return FallbackMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return FallbackMessage
}

// detailFrom extracts the detail field of an error body.
//
// Validation errors carry an array; anything that is not a string is
// returned as its JSON text. Empty, null and false count as absent.
func detailFrom(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")

	switch detail.Type {
	case gjson.String:
		return detail.Str
	case gjson.Null, gjson.False:
		return ""
	default:
		return detail.Raw
	}
}
