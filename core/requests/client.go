// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"codeberg.org/detectfe/detectfe/core/audit"
	"codeberg.org/detectfe/detectfe/core/idgen"
	"codeberg.org/detectfe/detectfe/core/requests/lrucache"
	"codeberg.org/detectfe/detectfe/server/request_context"
)

const (
	// DefaultBaseURL is where the backend API lives in a default deployment.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultTimeout applies to every backend call.
	DefaultTimeout = 60 * time.Second
)

// Config holds the fixed settings of a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit is the number of calls per second allowed to the backend.
	// Zero disables pacing.
	RateLimit float64
	RateBurst int
}

// Client calls the detection backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	origin     *url.URL
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *lrucache.Cache
	notifier   Notifier

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables caching of successful GET responses in cache.
func WithCache(cache *lrucache.Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// WithNotifier replaces [ContextNotifier] as the target of the default response interceptor.
func WithNotifier(n Notifier) ClientOption {
	return func(c *Client) { c.notifier = n }
}

// WithRequestInterceptor appends a request interceptor after the default one.
func WithRequestInterceptor(ic RequestInterceptor) ClientOption {
	return func(c *Client) { c.requestInterceptors = append(c.requestInterceptors, ic) }
}

// WithResponseInterceptor appends a response interceptor after the default one.
func WithResponseInterceptor(ic ResponseInterceptor) ClientOption {
	return func(c *Client) { c.responseInterceptors = append(c.responseInterceptors, ic) }
}

// NewClient returns a client for the backend described by cfg.
// Zero values in cfg fall back to [DefaultBaseURL] and [DefaultTimeout].
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend base URL: %w", err)
	}

	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("%w: %s", errInvalidBase, cfg.BaseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		origin:     &url.URL{Scheme: base.Scheme, Host: base.Host},
		timeout:    cfg.Timeout,
		httpClient: http.DefaultClient,
		notifier:   ContextNotifier,
	}

	if cfg.RateLimit > 0 {
		burst := max(cfg.RateBurst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	c.requestInterceptors = append([]RequestInterceptor{passThrough}, c.requestInterceptors...)
	c.responseInterceptors = append([]ResponseInterceptor{notifyInterceptor(c.notifier)}, c.responseInterceptors...)

	return c, nil
}

// Timeout returns the deadline applied to every call.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do performs one backend call and runs the response interceptors on the result.
//
// Status codes of 400 and above are returned as *APIError.
func (c *Client) Do(ctx context.Context, opts Options) (*Response, error) {
	resp, err := c.do(ctx, opts)

	for _, ic := range c.responseInterceptors {
		err = ic(ctx, resp, err)
	}

	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, opts Options) (*Response, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	useCache := c.cache != nil &&
		opts.Method == http.MethodGet &&
		!opts.Binary &&
		isCacheable(opts.Path) &&
		!request_context.FromContext(ctx).NoCache

	key := cacheKey(opts.Path, opts.Query)

	if useCache {
		if resp, ok := loadCached(c.cache, key); ok {
			return resp, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, opts)
	if err != nil {
		log.Error().Err(err).Str("path", opts.Path).Msg("Failed to build backend request")

		return nil, err
	}

	for _, ic := range c.requestInterceptors {
		req, err = ic(req)
		if err != nil {
			return nil, err
		}

		if req == nil {
			return nil, errInterceptor
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed waiting for backend rate limiter: %w", err)
		}
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, newStatusError(resp.StatusCode, resp.Body)
	}

	if useCache && resp.StatusCode == http.StatusOK {
		storeCached(c.cache, key, resp)
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, opts Options) (*http.Request, error) {
	target, err := url.Parse(c.baseURL + opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request URL: %w", err)
	}

	if len(opts.Query) > 0 {
		target.RawQuery = opts.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case opts.JSON != nil && opts.Form != nil:
		return nil, errConflictBody
	case opts.JSON != nil:
		data, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		body = bytes.NewReader(data)
		contentType = "application/json"
	case opts.Form != nil:
		body, contentType, err = opts.Form.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if !opts.Binary {
		req.Header.Set("Accept", "application/json")
	}

	return req, nil
}

// send executes req, reads the whole body and records an audit span.
func (c *Client) send(ctx context.Context, req *http.Request) (_ *Response, err error) {
	span := audit.Span{
		Destination: audit.ToBackend,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + idgen.Make(),
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	req = req.WithContext(span.Begin(req.Context()))

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer httpResp.Body.Close()

	span.StatusCode = httpResp.StatusCode

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Body = body

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}
