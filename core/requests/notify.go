// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/i18n"
	"codeberg.org/detectfe/detectfe/server/request_context"
)

// Notifier shows error messages to the user.
type Notifier interface {
	Error(ctx context.Context, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Error(ctx context.Context, message string) {
	f(ctx, message)
}

// ContextNotifier adds an error toast to the page being rendered for ctx.
var ContextNotifier Notifier = NotifierFunc(func(ctx context.Context, message string) {
	if message == FallbackMessage {
		message = i18n.Tr(ctx, message)
	}

	log.Warn().
		Str("request_id", request_context.FromContext(ctx).RequestID).
		Str("message", message).
		Msg("Backend request failed")

	request_context.FromContext(ctx).Notify(request_context.NoticeError, message)
})

// notifyInterceptor reports every failed call through n and passes the error on.
func notifyInterceptor(n Notifier) ResponseInterceptor {
	return func(ctx context.Context, _ *Response, err error) error {
		if err != nil {
			n.Error(ctx, MessageFor(err))
		}

		return err
	}
}

// passThrough logs the outgoing request and forwards it untouched.
func passThrough(req *http.Request) (*http.Request, error) {
	log.Trace().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Sending backend request")

	return req, nil
}
