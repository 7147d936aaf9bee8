// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// BodyKind is the encoding of a request body.
type BodyKind string

const (
	NoBody        BodyKind = ""
	JSONBody      BodyKind = "application/json"
	MultipartBody BodyKind = "multipart/form-data"
)

// Endpoint describes one backend route.
//
// Path is relative to the API base URL and may contain {placeholders},
// which are filled in order by Expand.
type Endpoint struct {
	Name   string
	Method string
	Path   string
	Body   BodyKind

	// Binary is set for endpoints that answer with a file.
	Binary bool

	// Invalidates lists cached GET path prefixes made stale by a successful call.
	Invalidates []string
}

// Expand substitutes params for the placeholders in Path, escaping each one.
// It panics if the number of params does not match the placeholders.
func (e Endpoint) Expand(params ...string) string {
	var b strings.Builder

	rest := e.Path
	used := 0

	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)

			break
		}

		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			panic(fmt.Sprintf("core: unterminated placeholder in %q", e.Path))
		}

		if used >= len(params) {
			panic(fmt.Sprintf("core: missing parameter for %q", e.Path))
		}

		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(params[used]))

		used++
		rest = rest[open+closing+1:]
	}

	if used != len(params) {
		panic(fmt.Sprintf("core: %d parameters given for %q, want %d", len(params), e.Path, used))
	}

	return b.String()
}

var (
	annotationPrefixes = []string{"/annotation/"}
	datasetPrefixes    = []string{"/dataset/", "/training/datasets"}
	trainingPrefixes   = []string{"/training/results/"}
)

// System
var (
	EndpointSystemInfo  = Endpoint{Name: "GetSystemInfo", Method: http.MethodGet, Path: "/system/info"}
	EndpointHealthCheck = Endpoint{Name: "HealthCheck", Method: http.MethodGet, Path: "/health"}
)

// Detection
var (
	EndpointDetect        = Endpoint{Name: "Detect", Method: http.MethodPost, Path: "/detection/detect", Body: MultipartBody}
	EndpointDetectBatch   = Endpoint{Name: "DetectBatch", Method: http.MethodPost, Path: "/detection/detect/batch", Body: MultipartBody}
	EndpointDetectFromURL = Endpoint{Name: "DetectFromURL", Method: http.MethodPost, Path: "/detection/detect/url", Body: MultipartBody}
	EndpointWeights       = Endpoint{Name: "GetWeights", Method: http.MethodGet, Path: "/detection/weights"}
	EndpointClasses       = Endpoint{Name: "GetClasses", Method: http.MethodGet, Path: "/detection/classes"}
	EndpointModelInfo     = Endpoint{Name: "GetModelInfo", Method: http.MethodGet, Path: "/detection/model/info"}
)

// Annotation
var (
	EndpointSaveAnnotations = Endpoint{
		Name: "SaveAnnotations", Method: http.MethodPost, Path: "/annotation/save",
		Body: JSONBody, Invalidates: annotationPrefixes,
	}
	EndpointGetAnnotations = Endpoint{Name: "GetAnnotations", Method: http.MethodGet, Path: "/annotation/{imageId}"}
	EndpointDeleteAnnotations = Endpoint{
		Name: "DeleteAnnotations", Method: http.MethodDelete, Path: "/annotation/{imageId}",
		Invalidates: annotationPrefixes,
	}
	EndpointListAnnotations  = Endpoint{Name: "ListAnnotations", Method: http.MethodGet, Path: "/annotation/"}
	EndpointUpdateAnnotation = Endpoint{
		Name: "UpdateAnnotation", Method: http.MethodPut, Path: "/annotation/{imageId}/annotation/{annotationId}",
		Body: JSONBody, Invalidates: annotationPrefixes,
	}
	EndpointDeleteAnnotation = Endpoint{
		Name: "DeleteAnnotation", Method: http.MethodDelete, Path: "/annotation/{imageId}/annotation/{annotationId}",
		Invalidates: annotationPrefixes,
	}
	EndpointAddAnnotation = Endpoint{
		Name: "AddAnnotation", Method: http.MethodPost, Path: "/annotation/{imageId}/annotation",
		Body: JSONBody, Invalidates: annotationPrefixes,
	}
)

// Export
var (
	EndpointExport         = Endpoint{Name: "ExportAnnotations", Method: http.MethodPost, Path: "/export/", Body: JSONBody}
	EndpointDownloadExport = Endpoint{
		Name: "DownloadExport", Method: http.MethodPost, Path: "/export/download",
		Body: JSONBody, Binary: true,
	}
	EndpointExportFormats = Endpoint{Name: "GetExportFormats", Method: http.MethodGet, Path: "/export/formats"}
	EndpointCleanExports  = Endpoint{Name: "CleanExports", Method: http.MethodDelete, Path: "/export/clean"}
)

// Training
var (
	EndpointStartTraining = Endpoint{
		Name: "StartTraining", Method: http.MethodPost, Path: "/training/start",
		Body: JSONBody, Invalidates: trainingPrefixes,
	}
	EndpointTrainingStatus = Endpoint{Name: "GetTrainingStatus", Method: http.MethodGet, Path: "/training/status/{taskId}"}
	EndpointTrainingOutput = Endpoint{Name: "GetTrainingOutput", Method: http.MethodGet, Path: "/training/output/{taskId}"}
	EndpointStopTraining   = Endpoint{
		Name: "StopTraining", Method: http.MethodPost, Path: "/training/stop/{taskId}",
		Invalidates: trainingPrefixes,
	}
	EndpointListTraining     = Endpoint{Name: "ListTrainingTasks", Method: http.MethodGet, Path: "/training/list"}
	EndpointTrainingResults  = Endpoint{Name: "GetTrainingResults", Method: http.MethodGet, Path: "/training/results/{taskId}"}
	EndpointTrainingDatasets = Endpoint{Name: "GetDatasets", Method: http.MethodGet, Path: "/training/datasets"}
	EndpointHyperparameters  = Endpoint{Name: "GetHyperparameters", Method: http.MethodGet, Path: "/training/hyperparameters"}
)

// Dataset
var (
	EndpointListDatasets   = Endpoint{Name: "ListDatasets", Method: http.MethodGet, Path: "/dataset/list"}
	EndpointDatasetInfo    = Endpoint{Name: "GetDatasetInfo", Method: http.MethodGet, Path: "/dataset/{name}"}
	EndpointCreateDataset  = Endpoint{
		Name: "CreateDataset", Method: http.MethodPost, Path: "/dataset/create",
		Body: MultipartBody, Invalidates: datasetPrefixes,
	}
	EndpointUploadDatasetImages = Endpoint{
		Name: "UploadDatasetImages", Method: http.MethodPost, Path: "/dataset/{name}/upload",
		Body: MultipartBody, Invalidates: datasetPrefixes,
	}
	EndpointDeleteDataset = Endpoint{
		Name: "DeleteDataset", Method: http.MethodDelete, Path: "/dataset/{name}",
		Invalidates: datasetPrefixes,
	}
	EndpointListDatasetImages = Endpoint{Name: "ListDatasetImages", Method: http.MethodGet, Path: "/dataset/{name}/images"}
)

// Preprocessing
var (
	EndpointAugment           = Endpoint{Name: "AugmentImage", Method: http.MethodPost, Path: "/preprocessing/augment", Body: MultipartBody}
	EndpointBatchAugment      = Endpoint{Name: "BatchAugment", Method: http.MethodPost, Path: "/preprocessing/batch-augment", Body: MultipartBody}
	EndpointQualityCheck      = Endpoint{Name: "CheckQuality", Method: http.MethodPost, Path: "/preprocessing/quality-check", Body: MultipartBody}
	EndpointBatchQualityCheck = Endpoint{
		Name: "BatchQualityCheck", Method: http.MethodPost, Path: "/preprocessing/batch-quality-check",
		Body: MultipartBody,
	}
)

// Endpoints returns every backend endpoint in table order.
func Endpoints() []Endpoint {
	return []Endpoint{
		EndpointSystemInfo, EndpointHealthCheck,
		EndpointDetect, EndpointDetectBatch, EndpointDetectFromURL, EndpointWeights, EndpointClasses, EndpointModelInfo,
		EndpointSaveAnnotations, EndpointGetAnnotations, EndpointDeleteAnnotations, EndpointListAnnotations,
		EndpointUpdateAnnotation, EndpointDeleteAnnotation, EndpointAddAnnotation,
		EndpointExport, EndpointDownloadExport, EndpointExportFormats, EndpointCleanExports,
		EndpointStartTraining, EndpointTrainingStatus, EndpointTrainingOutput, EndpointStopTraining,
		EndpointListTraining, EndpointTrainingResults, EndpointTrainingDatasets, EndpointHyperparameters,
		EndpointListDatasets, EndpointDatasetInfo, EndpointCreateDataset, EndpointUploadDatasetImages,
		EndpointDeleteDataset, EndpointListDatasetImages,
		EndpointAugment, EndpointBatchAugment, EndpointQualityCheck, EndpointBatchQualityCheck,
	}
}
