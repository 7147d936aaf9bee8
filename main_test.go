// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/detectfe/detectfe/config"
	"codeberg.org/detectfe/detectfe/i18n"
)

// fakeBackend stands in for the detection backend and records what it was asked.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string

	// failures maps "METHOD /path" to a status and JSON body.
	failures map[string]struct {
		status int
		body   string
	}
}

func (b *fakeBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.requests...)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, key)
	failure, failed := b.failures[key]
	b.mu.Unlock()

	if failed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failure.status)
		_, _ = w.Write([]byte(failure.body))

		return
	}

	var body any

	switch key {
	case "GET /uploads/images/a.jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))

		return
	case "POST /api/export/download":
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="export_yolo.zip"`)
		_, _ = w.Write([]byte("PK-zip"))

		return
	case "GET /api/system/info":
		body = map[string]any{"app_name": "YOLOv5 Detection", "version": "1.0.0", "cuda_available": false}
	case "GET /api/health":
		body = map[string]any{"status": "healthy", "version": "1.0.0"}
	case "GET /api/training/list":
		body = map[string]any{"tasks": []map[string]any{{"task_id": "abc", "status": "running", "progress": 42.0}}, "total": 1}
	case "GET /api/training/datasets":
		body = map[string]any{"datasets": []map[string]any{{"name": "coco128", "path": "/y/data/coco128.yaml", "relative_path": "data/coco128.yaml"}}}
	case "POST /api/training/stop/abc":
		body = map[string]any{"success": true, "message": "训练已停止"}
	case "GET /api/training/status/abc":
		body = map[string]any{"task_id": "abc", "status": "stopped", "progress": 42.0}
	case "GET /api/export/formats":
		body = map[string]any{"formats": []map[string]any{{"value": "yolo", "label": "YOLO"}}}
	default:
		body = map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// newTestServer serves the full handler chain against a fake backend.
func newTestServer(t *testing.T, backend *fakeBackend) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	var cfg config.ServerConfig

	require.NoError(t, cfg.Load(filepath.Join(t.TempDir(), "missing.yaml")))

	cfg.Backend.BaseURL = upstream.URL + "/api"
	cfg.Development.InDevelopment = false
	config.Global = cfg

	require.NoError(t, i18n.Setup(embeddedContent, false))

	handler, err := newHandler(&config.Global)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

// httpTestCase defines a test case.
type httpTestCase struct {
	URL                string
	Method             string
	ExpectedStatusCode int

	// POST requests specific fields
	FormData map[string]string
}

func (c httpTestCase) do(t *testing.T, srv *httptest.Server) *http.Response {
	t.Helper()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	var (
		resp *http.Response
		err  error
	)

	if c.Method == http.MethodPost {
		form := url.Values{}
		for k, v := range c.FormData {
			form.Set(k, v)
		}

		resp, err = client.PostForm(srv.URL+c.URL, form)
	} else {
		resp, err = client.Get(srv.URL + c.URL)
	}

	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func document(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	return doc
}

func TestAllRoutes(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	testCases := []httpTestCase{
		{URL: "/", ExpectedStatusCode: http.StatusOK},
		{URL: "/detection", ExpectedStatusCode: http.StatusOK},
		{URL: "/batch", ExpectedStatusCode: http.StatusOK},
		{URL: "/training", ExpectedStatusCode: http.StatusOK},
		{URL: "/training?task=abc", ExpectedStatusCode: http.StatusOK},
		{URL: "/dataset", ExpectedStatusCode: http.StatusOK},
		{URL: "/dataset?name=coco128&split=val", ExpectedStatusCode: http.StatusOK},
		{URL: "/preprocessing", ExpectedStatusCode: http.StatusOK},
		{URL: "/export", ExpectedStatusCode: http.StatusOK},
		{URL: "/css/main.css", ExpectedStatusCode: http.StatusOK},
		{URL: "/robots.txt", ExpectedStatusCode: http.StatusOK},
		{URL: "/nonexistent", ExpectedStatusCode: http.StatusNotFound},
		{URL: "/training/abc/stop", ExpectedStatusCode: http.StatusNotFound},
		{URL: "/training/", ExpectedStatusCode: http.StatusPermanentRedirect},
		{URL: "/", Method: http.MethodPost, ExpectedStatusCode: http.StatusMethodNotAllowed},
		{URL: "/training", Method: http.MethodPost, FormData: map[string]string{"action": "nope"}, ExpectedStatusCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.Method+" "+tc.URL, func(t *testing.T) {
			assert.Equal(t, tc.ExpectedStatusCode, tc.do(t, srv).StatusCode)
		})
	}
}

func TestTrainingPage(t *testing.T) {
	backend := &fakeBackend{}
	srv := newTestServer(t, backend)

	resp := httpTestCase{URL: "/training"}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := document(t, resp)

	assert.Equal(t, "模型训练", doc.Find("h1.page-title").Text())
	assert.Equal(t, "/training", doc.Find("nav a.active").AttrOr("href", ""))
	assert.Equal(t, "abc", doc.Find("table.tasks tbody tr td a").First().Text())
	assert.Equal(t, "/training/abc/stop", doc.Find("table.tasks form").AttrOr("action", ""))
	assert.Equal(t, "/y/data/coco128.yaml", doc.Find(`select[name="data_yaml"] option`).AttrOr("value", ""))

	assert.Subset(t, backend.seen(), []string{
		"GET /api/training/list",
		"GET /api/training/datasets",
		"GET /api/training/hyperparameters",
	})
}

func TestLocalizedTitle(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	doc := document(t, httpTestCase{URL: "/detection?lang=en"}.do(t, srv))

	assert.Equal(t, "Detection & Annotation", doc.Find("h1.page-title").Text())
	assert.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
}

func TestNotFoundPage(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp := httpTestCase{URL: "/nonexistent"}.do(t, srv)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	doc := document(t, resp)
	assert.Equal(t, "页面不存在", doc.Find("h1.page-title").Text())
	assert.Zero(t, doc.Find("nav a.active").Length())
}

func TestBackendErrorBecomesToast(t *testing.T) {
	backend := &fakeBackend{failures: map[string]struct {
		status int
		body   string
	}{
		"GET /api/detection/weights": {http.StatusInternalServerError, `{"detail":"模型加载失败"}`},
		"GET /api/detection/classes": {http.StatusBadGateway, `not json`},
	}}
	srv := newTestServer(t, backend)

	resp := httpTestCase{URL: "/detection"}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := document(t, resp)

	var notices []string

	doc.Find(".notice-error").Each(func(_ int, s *goquery.Selection) {
		notices = append(notices, s.Text())
	})

	assert.Contains(t, notices, "模型加载失败")
	assert.Contains(t, notices, "request failed with status code 502")

	// The page still renders with the data that did arrive.
	assert.Equal(t, 1, doc.Find(`select[name="weights"] option`).Length())
}

func TestStopTraining(t *testing.T) {
	backend := &fakeBackend{}
	srv := newTestServer(t, backend)

	resp := httpTestCase{URL: "/training/abc/stop", Method: http.MethodPost}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := document(t, resp)

	assert.Equal(t, 1, doc.Find(".notice-success").Length())
	assert.Contains(t, doc.Find(".task-detail h2").Text(), "abc")
	assert.Contains(t, backend.seen(), "POST /api/training/stop/abc")
}

func TestValidationErrorIsShown(t *testing.T) {
	backend := &fakeBackend{}
	srv := newTestServer(t, backend)

	resp := httpTestCase{
		URL:      "/dataset",
		Method:   http.MethodPost,
		FormData: map[string]string{"action": "create", "name": "cars"},
	}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, document(t, resp).Find(".notice-error").Length())
	assert.NotContains(t, backend.seen(), "POST /api/dataset/create")
}

func TestExportDownload(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp := httpTestCase{
		URL:      "/export",
		Method:   http.MethodPost,
		FormData: map[string]string{"action": "download", "format": "yolo"},
	}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "export_yolo.zip")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-zip", string(body))
}

func TestMediaProxy(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp := httpTestCase{URL: "/uploads/images/a.jpg"}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestBlankImageIDIsRejected(t *testing.T) {
	backend := &fakeBackend{}
	srv := newTestServer(t, backend)

	resp := httpTestCase{
		URL:      "/detection",
		Method:   http.MethodPost,
		FormData: map[string]string{"action": "delete-annotations", "image_id": " "},
	}.do(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := document(t, resp)
	assert.Equal(t, 1, doc.Find(".notice-error").Length())
	assert.Zero(t, doc.Find(".notice-success").Length())

	for _, req := range backend.seen() {
		assert.NotEqual(t, http.MethodDelete, strings.SplitN(req, " ", 2)[0], req)
	}
}
