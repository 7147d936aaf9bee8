// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/detectfe/detectfe/core/requests"
	"codeberg.org/detectfe/detectfe/core/requests/lrucache"
)

type recordedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ = mime.ParseMediaType(ct)
	}

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.EscapedPath(),
		Query:       r.URL.RawQuery,
		ContentType: mediaType,
		Body:        body,
	})
	b.mu.Unlock()

	if b.respond != nil {
		b.respond(w, r)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{}`)
}

func (b *fakeBackend) Requests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]recordedRequest(nil), b.requests...)
}

func newTestAPI(t *testing.T, backend *fakeBackend, opts ...requests.ClientOption) *API {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	opts = append([]requests.ClientOption{
		requests.WithNotifier(requests.NotifierFunc(func(context.Context, string) {})),
	}, opts...)

	client, err := requests.NewClient(requests.Config{BaseURL: srv.URL + "/api", Timeout: time.Second}, opts...)
	require.NoError(t, err)

	return NewAPI(client)
}

var testImage = requests.FormFile{Filename: "cat.jpg", Content: []byte("\xff\xd8\xff\xe0\x00\x10JFIF")}

func TestEndpointCalls(t *testing.T) {
	const (
		jsonType      = "application/json"
		multipartType = "multipart/form-data"
	)

	tests := []struct {
		endpoint    Endpoint
		call        func(ctx context.Context, api *API) error
		path        string
		query       string
		contentType string
	}{
		{EndpointSystemInfo, func(ctx context.Context, api *API) error { _, err := api.GetSystemInfo(ctx); return err }, "/api/system/info", "", ""},
		{EndpointHealthCheck, func(ctx context.Context, api *API) error { _, err := api.HealthCheck(ctx); return err }, "/api/health", "", ""},
		{EndpointDetect, func(ctx context.Context, api *API) error {
			_, err := api.Detect(ctx, testImage, DefaultDetectParams())
			return err
		}, "/api/detection/detect", "", multipartType},
		{EndpointDetectBatch, func(ctx context.Context, api *API) error {
			_, err := api.DetectBatch(ctx, []requests.FormFile{testImage, testImage}, DetectParams{})
			return err
		}, "/api/detection/detect/batch", "", multipartType},
		{EndpointDetectFromURL, func(ctx context.Context, api *API) error {
			_, err := api.DetectFromURL(ctx, "https://example.com/cat.jpg", DetectParams{})
			return err
		}, "/api/detection/detect/url", "", multipartType},
		{EndpointWeights, func(ctx context.Context, api *API) error { _, err := api.GetWeights(ctx); return err }, "/api/detection/weights", "", ""},
		{EndpointClasses, func(ctx context.Context, api *API) error { _, err := api.GetClasses(ctx); return err }, "/api/detection/classes", "", ""},
		{EndpointModelInfo, func(ctx context.Context, api *API) error {
			_, err := api.GetModelInfo(ctx, "")
			return err
		}, "/api/detection/model/info", "weights=yolov5s.pt", ""},
		{EndpointSaveAnnotations, func(ctx context.Context, api *API) error {
			_, err := api.SaveAnnotations(ctx, AnnotationSet{ImageID: "img1"})
			return err
		}, "/api/annotation/save", "", jsonType},
		{EndpointGetAnnotations, func(ctx context.Context, api *API) error {
			_, err := api.GetAnnotations(ctx, "a b/c")
			return err
		}, "/api/annotation/a%20b%2Fc", "", ""},
		{EndpointDeleteAnnotations, func(ctx context.Context, api *API) error {
			_, err := api.DeleteAnnotations(ctx, "img1")
			return err
		}, "/api/annotation/img1", "", ""},
		{EndpointListAnnotations, func(ctx context.Context, api *API) error {
			_, err := api.ListAnnotations(ctx, 0, 0)
			return err
		}, "/api/annotation/", "page=1&page_size=20", ""},
		{EndpointUpdateAnnotation, func(ctx context.Context, api *API) error {
			_, err := api.UpdateAnnotation(ctx, "img1", 3, Annotation{ID: 3})
			return err
		}, "/api/annotation/img1/annotation/3", "", jsonType},
		{EndpointDeleteAnnotation, func(ctx context.Context, api *API) error {
			_, err := api.DeleteAnnotation(ctx, "img1", 3)
			return err
		}, "/api/annotation/img1/annotation/3", "", ""},
		{EndpointAddAnnotation, func(ctx context.Context, api *API) error {
			_, err := api.AddAnnotation(ctx, "img1", Annotation{ID: 4, IsManual: true})
			return err
		}, "/api/annotation/img1/annotation", "", jsonType},
		{EndpointExport, func(ctx context.Context, api *API) error {
			_, err := api.ExportAnnotations(ctx, ExportRequest{ImageIDs: []string{"img1"}})
			return err
		}, "/api/export/", "", jsonType},
		{EndpointDownloadExport, func(ctx context.Context, api *API) error {
			_, err := api.DownloadExport(ctx, ExportRequest{ImageIDs: []string{"img1"}, Format: ExportCOCO})
			return err
		}, "/api/export/download", "", jsonType},
		{EndpointExportFormats, func(ctx context.Context, api *API) error { _, err := api.GetExportFormats(ctx); return err }, "/api/export/formats", "", ""},
		{EndpointCleanExports, func(ctx context.Context, api *API) error { _, err := api.CleanExports(ctx); return err }, "/api/export/clean", "", ""},
		{EndpointStartTraining, func(ctx context.Context, api *API) error {
			_, err := api.StartTraining(ctx, DefaultTrainingConfig("data/coco128.yaml"))
			return err
		}, "/api/training/start", "", jsonType},
		{EndpointTrainingStatus, func(ctx context.Context, api *API) error {
			_, err := api.GetTrainingStatus(ctx, "t1")
			return err
		}, "/api/training/status/t1", "", ""},
		{EndpointTrainingOutput, func(ctx context.Context, api *API) error {
			_, err := api.GetTrainingOutput(ctx, "t1")
			return err
		}, "/api/training/output/t1", "", ""},
		{EndpointStopTraining, func(ctx context.Context, api *API) error {
			_, err := api.StopTraining(ctx, "t1")
			return err
		}, "/api/training/stop/t1", "", ""},
		{EndpointListTraining, func(ctx context.Context, api *API) error { _, err := api.ListTrainingTasks(ctx); return err }, "/api/training/list", "", ""},
		{EndpointTrainingResults, func(ctx context.Context, api *API) error {
			_, err := api.GetTrainingResults(ctx, "t1")
			return err
		}, "/api/training/results/t1", "", ""},
		{EndpointTrainingDatasets, func(ctx context.Context, api *API) error { _, err := api.GetDatasets(ctx); return err }, "/api/training/datasets", "", ""},
		{EndpointHyperparameters, func(ctx context.Context, api *API) error { _, err := api.GetHyperparameters(ctx); return err }, "/api/training/hyperparameters", "", ""},
		{EndpointListDatasets, func(ctx context.Context, api *API) error { _, err := api.ListDatasets(ctx); return err }, "/api/dataset/list", "", ""},
		{EndpointDatasetInfo, func(ctx context.Context, api *API) error {
			_, err := api.GetDatasetInfo(ctx, "cars")
			return err
		}, "/api/dataset/cars", "", ""},
		{EndpointCreateDataset, func(ctx context.Context, api *API) error {
			_, err := api.CreateDataset(ctx, NewDataset{Name: "cars", Classes: []string{"car", " bus "}})
			return err
		}, "/api/dataset/create", "", multipartType},
		{EndpointUploadDatasetImages, func(ctx context.Context, api *API) error {
			_, err := api.UploadDatasetImages(ctx, "cars", "", []requests.FormFile{testImage})
			return err
		}, "/api/dataset/cars/upload", "split=train", multipartType},
		{EndpointDeleteDataset, func(ctx context.Context, api *API) error {
			_, err := api.DeleteDataset(ctx, "cars")
			return err
		}, "/api/dataset/cars", "", ""},
		{EndpointListDatasetImages, func(ctx context.Context, api *API) error {
			_, err := api.ListDatasetImages(ctx, "cars", "val", 2, 50)
			return err
		}, "/api/dataset/cars/images", "page=2&page_size=50&split=val", ""},
		{EndpointAugment, func(ctx context.Context, api *API) error {
			_, err := api.AugmentImage(ctx, testImage, AugmentOptions{FlipHorizontal: true})
			return err
		}, "/api/preprocessing/augment", "", multipartType},
		{EndpointBatchAugment, func(ctx context.Context, api *API) error {
			_, err := api.BatchAugment(ctx, []requests.FormFile{testImage}, AugmentOperations{Resize: []int{320, 320}})
			return err
		}, "/api/preprocessing/batch-augment", "", multipartType},
		{EndpointQualityCheck, func(ctx context.Context, api *API) error {
			_, err := api.CheckQuality(ctx, testImage, 0)
			return err
		}, "/api/preprocessing/quality-check", "", multipartType},
		{EndpointBatchQualityCheck, func(ctx context.Context, api *API) error {
			_, err := api.BatchQualityCheck(ctx, []requests.FormFile{testImage}, 50)
			return err
		}, "/api/preprocessing/batch-quality-check", "", multipartType},
	}

	covered := make(map[string]bool)

	for _, tt := range tests {
		covered[tt.endpoint.Name] = true

		t.Run(tt.endpoint.Name, func(t *testing.T) {
			backend := &fakeBackend{}
			api := newTestAPI(t, backend)

			require.NoError(t, tt.call(context.Background(), api))

			reqs := backend.Requests()
			require.Len(t, reqs, 1, "exactly one request per call")
			assert.Equal(t, tt.endpoint.Method, reqs[0].Method)
			assert.Equal(t, tt.path, reqs[0].Path)
			assert.Equal(t, tt.query, reqs[0].Query)
			assert.Equal(t, tt.contentType, reqs[0].ContentType)
			assert.Equal(t, string(tt.endpoint.Body), reqs[0].ContentType)
		})
	}

	for _, ep := range Endpoints() {
		assert.True(t, covered[ep.Name], "endpoint %s has no test case", ep.Name)
	}

	assert.Len(t, covered, len(Endpoints()))
}

func TestEndpointExpand(t *testing.T) {
	assert.Equal(t, "/annotation/x%3Fy/annotation/7", EndpointUpdateAnnotation.Expand("x?y", "7"))
	assert.Equal(t, "/system/info", EndpointSystemInfo.Expand())

	assert.Panics(t, func() { EndpointUpdateAnnotation.Expand("only-one") })
	assert.Panics(t, func() { EndpointSystemInfo.Expand("extra") })
}

func TestDetectForm(t *testing.T) {
	backend := &fakeBackend{respond: func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "0.5", r.FormValue("conf_threshold"))
		assert.Equal(t, "0.45", r.FormValue("iou_threshold"))
		assert.Equal(t, "640", r.FormValue("img_size"))
		assert.Equal(t, "yolov5s.pt", r.FormValue("weights"))
		assert.Equal(t, "0,2", r.FormValue("classes"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "cat.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

		_, _ = io.WriteString(w, `{
			"image_id": "abc",
			"image_path": "/uploads/images/abc.jpg",
			"image_width": 640,
			"image_height": 480,
			"detections": [{"id": 0, "class_id": 2, "class_name": "car", "confidence": 0.91,
				"bbox": {"x": 1, "y": 2, "width": 30, "height": 40}}],
			"inference_time": 12.5
		}`)
	}}

	api := newTestAPI(t, backend)

	result, err := api.Detect(context.Background(), testImage, DetectParams{ConfThreshold: 0.5, Classes: []int{0, 2}})
	require.NoError(t, err)
	require.Len(t, result.Detections, 1)
	assert.Equal(t, "car", result.Detections[0].ClassName)
	assert.InDelta(t, 30, result.Detections[0].BBox.Width, 0)
	assert.InDelta(t, 12.5, result.InferenceTime, 0)

	set := AnnotationsFromDetections(*result)
	require.Len(t, set.Annotations, 1)
	assert.False(t, set.Annotations[0].IsManual)
	require.NotNil(t, set.Annotations[0].Confidence)
	assert.InDelta(t, 0.91, *set.Annotations[0].Confidence, 0)
}

func TestValidationSkipsRequest(t *testing.T) {
	backend := &fakeBackend{}
	api := newTestAPI(t, backend)
	ctx := context.Background()

	_, err := api.DetectBatch(ctx, nil, DetectParams{})
	require.ErrorIs(t, err, errNoImages)

	_, err = api.CreateDataset(ctx, NewDataset{Name: " "})
	require.ErrorIs(t, err, errDatasetNameEmpty)

	_, err = api.CreateDataset(ctx, NewDataset{Name: "cars", Classes: []string{" "}})
	require.ErrorIs(t, err, errNoClasses)

	_, err = api.StartTraining(ctx, TrainingConfig{})
	require.ErrorIs(t, err, errNoDataYAML)
	require.ErrorIs(t, err, ErrInvalidInput)

	emptyIDCalls := map[string]func() error{
		"GetAnnotations":     func() error { _, err := api.GetAnnotations(ctx, ""); return err },
		"DeleteAnnotations":  func() error { _, err := api.DeleteAnnotations(ctx, " "); return err },
		"UpdateAnnotation":   func() error { _, err := api.UpdateAnnotation(ctx, "", 1, Annotation{}); return err },
		"DeleteAnnotation":   func() error { _, err := api.DeleteAnnotation(ctx, "", 1); return err },
		"AddAnnotation":      func() error { _, err := api.AddAnnotation(ctx, "", Annotation{}); return err },
		"GetTrainingStatus":  func() error { _, err := api.GetTrainingStatus(ctx, ""); return err },
		"GetTrainingOutput":  func() error { _, err := api.GetTrainingOutput(ctx, ""); return err },
		"StopTraining":       func() error { _, err := api.StopTraining(ctx, ""); return err },
		"GetTrainingResults": func() error { _, err := api.GetTrainingResults(ctx, ""); return err },
	}

	for name, fn := range emptyIDCalls {
		err := fn()
		require.ErrorIs(t, err, errEmptyPathParam, name)
		require.ErrorIs(t, err, ErrInvalidInput, name)
	}

	assert.Empty(t, backend.Requests())
}

func TestAPIErrorPropagates(t *testing.T) {
	var notified []string

	backend := &fakeBackend{respond: func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"训练任务不存在"}`)
	}}

	api := newTestAPI(t, backend, requests.WithNotifier(requests.NotifierFunc(func(_ context.Context, msg string) {
		notified = append(notified, msg)
	})))

	_, err := api.GetTrainingStatus(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *requests.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "训练任务不存在", requests.MessageFor(err))
	assert.Equal(t, []string{"训练任务不存在"}, notified)
}

func TestMutationInvalidatesCache(t *testing.T) {
	var lists atomic.Int32

	backend := &fakeBackend{respond: func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/dataset/list" {
			lists.Add(1)
		}

		_, _ = io.WriteString(w, `{"datasets":[],"success":true}`)
	}}

	cache, err := lrucache.New(32, time.Minute, true)
	require.NoError(t, err)

	api := newTestAPI(t, backend, requests.WithCache(cache))
	ctx := context.Background()

	_, err = api.ListDatasets(ctx)
	require.NoError(t, err)
	_, err = api.ListDatasets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, lists.Load())

	_, err = api.DeleteDataset(ctx, "cars")
	require.NoError(t, err)

	_, err = api.ListDatasets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, lists.Load())
}

func TestDownloadExport(t *testing.T) {
	backend := &fakeBackend{respond: func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="annotations_coco_1a2b3c4d.zip"`)
		_, _ = w.Write([]byte("PK\x03\x04"))
	}}

	api := newTestAPI(t, backend)

	archive, err := api.DownloadExport(context.Background(), ExportRequest{ImageIDs: []string{"img1"}, Format: ExportCOCO})
	require.NoError(t, err)
	assert.Equal(t, "annotations_coco_1a2b3c4d.zip", archive.Filename)
	assert.Equal(t, "application/zip", archive.ContentType)
	assert.Equal(t, []byte("PK\x03\x04"), archive.Data)

	var sent ExportRequest
	require.NoError(t, json.Unmarshal(backend.Requests()[0].Body, &sent))
	assert.Equal(t, ExportCOCO, sent.Format)
	assert.Equal(t, []string{"img1"}, sent.ImageIDs)
}

func TestModelInfoClassNames(t *testing.T) {
	byID := ModelInfo{ClassNames: json.RawMessage(`{"1":"bicycle","0":"person","10":"fire hydrant"}`)}
	assert.Equal(t, []string{"person", "bicycle", "fire hydrant"}, byID.ClassNameList())

	list := ModelInfo{ClassNames: json.RawMessage(`["person","bicycle"]`)}
	assert.Equal(t, []string{"person", "bicycle"}, list.ClassNameList())

	assert.Nil(t, ModelInfo{}.ClassNameList())
}
