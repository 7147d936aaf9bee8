// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog/log"
)

// Span records a single HTTP exchange, either a page served to a user
// or a call made to the detection backend.
type Span struct {
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	Destination TrafficDestination
	RequestID   string
	Method      string
	URL         string
	StatusCode  int
	Error       error
	Body        []byte // only kept for response saving, never logged

	savedAs string
}

// TrafficDestination describes who an HTTP exchange was addressed to.
type TrafficDestination string

const (
	ToUser    TrafficDestination = "user"
	ToBackend TrafficDestination = "backend"

	responseFilePermissions = 0o600
)

var (
	// SaveResponses makes backend response bodies get written to ResponseDirectory.
	SaveResponses bool

	// ResponseDirectory is where saved backend responses go, one file per request ID.
	ResponseDirectory string
)

// ServerTimingName returns the metric name used in the Server-Timing header.
// The URL is base64 encoded without padding so it stays a valid token.
func (span Span) ServerTimingName() string {
	return string(span.Destination) + "$" + span.Method + "$" + base64.RawURLEncoding.EncodeToString([]byte(span.URL))
}

// Begin starts timing the span and returns a context carrying its trace task.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))

	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric(span.ServerTimingName())
		span.metric.Extra = map[string]string{
			"start": strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64),
		}
	}

	return ctx
}

// End stops the timer. Calling it more than once is harmless.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()
	span.task = nil

	if span.metric != nil {
		span.metric.Duration = span.duration
	}
}

// Duration returns how long the span ran, once it has ended.
func (span *Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span at debug level and saves the backend body if enabled.
func (span *Span) Log() {
	if span.Destination == ToBackend && SaveResponses && len(span.Body) > 0 {
		span.saveBody()
	}

	event := log.Debug().
		Str("sys", "http").
		Str("method", span.Method).
		Str("url", span.URL).
		Int("status_code", span.StatusCode).
		Str("len", humanizeSize(len(span.Body))).
		Dur("dur", span.duration).
		Str("destination", string(span.Destination)).
		Str("request_id", span.RequestID)

	if span.savedAs != "" {
		event.Str("response_filename", span.savedAs)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}

func (span *Span) saveBody() {
	filename := filepath.Join(ResponseDirectory, span.RequestID)

	if err := os.WriteFile(filename, span.Body, responseFilePermissions); err != nil {
		log.Err(err).
			Str("request_id", span.RequestID).
			Msg("Failed to save response")

		return
	}

	span.savedAs = filename
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
)

func humanizeSize(n int) string {
	switch {
	case n < bytesInKB:
		return strconv.Itoa(n)
	case n < bytesInMB:
		return fmt.Sprintf("%.2fK", float64(n)/bytesInKB)
	default:
		return fmt.Sprintf("%.2fM", float64(n)/bytesInMB)
	}
}
