// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"encoding/json"
	"sort"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20

	DefaultWeights       = "yolov5s.pt"
	DefaultConfThreshold = 0.25
	DefaultIoUThreshold  = 0.45
	DefaultImgSize       = 640
	DefaultBlurThreshold = 100.0
	DefaultSplit         = "train"
)

// MutationResult is the reply of most mutating endpoints.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SystemInfo struct {
	AppName         string `json:"app_name"`
	Version         string `json:"version"`
	CUDAAvailable   bool   `json:"cuda_available"`
	CUDADeviceCount int    `json:"cuda_device_count"`
	CUDADeviceName  string `json:"cuda_device_name"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// BoundingBox is in pixels, with X and Y at the top-left corner.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Detection struct {
	ID         int         `json:"id"`
	ClassID    int         `json:"class_id"`
	ClassName  string      `json:"class_name"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}

type DetectionResult struct {
	ImageID     string      `json:"image_id"`
	ImagePath   string      `json:"image_path"`
	ImageWidth  int         `json:"image_width"`
	ImageHeight int         `json:"image_height"`
	Detections  []Detection `json:"detections"`

	// InferenceTime is in milliseconds.
	InferenceTime float64 `json:"inference_time"`
}

// BatchDetectionItem is either a result or, when Error is set, a failed file.
type BatchDetectionItem struct {
	DetectionResult

	Error    string `json:"error,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type BatchDetectionResult struct {
	Results []BatchDetectionItem `json:"results"`
	Total   int                  `json:"total"`
}

// DetectParams are the inference settings sent with an image.
type DetectParams struct {
	ConfThreshold float64
	IoUThreshold  float64
	ImgSize       int
	Weights       string

	// Classes restricts detection to these class IDs. Empty means all.
	Classes []int
}

// DefaultDetectParams returns the backend's default inference settings.
func DefaultDetectParams() DetectParams {
	return DetectParams{
		ConfThreshold: DefaultConfThreshold,
		IoUThreshold:  DefaultIoUThreshold,
		ImgSize:       DefaultImgSize,
		Weights:       DefaultWeights,
	}
}

type ClassInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ModelInfo struct {
	Weights    string `json:"weights"`
	Device     string `json:"device"`
	NumClasses int    `json:"num_classes"`

	// ClassNames is either an object keyed by class ID or a list.
	ClassNames json.RawMessage `json:"class_names"`
}

// ClassNameList returns the class names ordered by class ID.
func (m ModelInfo) ClassNameList() []string {
	var list []string
	if err := json.Unmarshal(m.ClassNames, &list); err == nil {
		return list
	}

	var byID map[string]string
	if err := json.Unmarshal(m.ClassNames, &byID); err != nil {
		return nil
	}

	ids := make([]int, 0, len(byID))
	for k := range byID {
		if id, err := strconv.Atoi(k); err == nil {
			ids = append(ids, id)
		}
	}

	sort.Ints(ids)

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, byID[strconv.Itoa(id)])
	}

	return names
}

type Annotation struct {
	ID         int         `json:"id"`
	ClassID    int         `json:"class_id"`
	ClassName  string      `json:"class_name"`
	BBox       BoundingBox `json:"bbox"`
	IsManual   bool        `json:"is_manual"`
	Confidence *float64    `json:"confidence,omitempty"`
}

type AnnotationSet struct {
	ImageID     string       `json:"image_id"`
	ImagePath   string       `json:"image_path"`
	ImageWidth  int          `json:"image_width"`
	ImageHeight int          `json:"image_height"`
	Annotations []Annotation `json:"annotations"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// AnnotationsFromDetections turns detection results into automatic annotations.
func AnnotationsFromDetections(result DetectionResult) AnnotationSet {
	set := AnnotationSet{
		ImageID:     result.ImageID,
		ImagePath:   result.ImagePath,
		ImageWidth:  result.ImageWidth,
		ImageHeight: result.ImageHeight,
		Annotations: make([]Annotation, 0, len(result.Detections)),
	}

	for _, d := range result.Detections {
		confidence := d.Confidence
		set.Annotations = append(set.Annotations, Annotation{
			ID:         d.ID,
			ClassID:    d.ClassID,
			ClassName:  d.ClassName,
			BBox:       d.BBox,
			Confidence: &confidence,
		})
	}

	return set
}

type SaveAnnotationsResult struct {
	Success         bool   `json:"success"`
	ImageID         string `json:"image_id"`
	AnnotationCount int    `json:"annotation_count"`
	FilePath        string `json:"file_path"`
}

type AnnotationSummary struct {
	ImageID         string `json:"image_id"`
	ImagePath       string `json:"image_path"`
	AnnotationCount int    `json:"annotation_count"`
	UpdatedAt       string `json:"updated_at"`
}

type AnnotationPage struct {
	Items    []AnnotationSummary `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type AddAnnotationResult struct {
	MutationResult

	Annotation Annotation `json:"annotation"`
}

// ExportFormat is one of the annotation formats the backend writes.
type ExportFormat string

const (
	ExportYOLO ExportFormat = "yolo"
	ExportCOCO ExportFormat = "coco"
	ExportVOC  ExportFormat = "voc"
	ExportJSON ExportFormat = "json"
)

type ExportRequest struct {
	ImageIDs      []string     `json:"image_ids"`
	Format        ExportFormat `json:"format"`
	IncludeImages bool         `json:"include_images"`
}

type ExportResult struct {
	Success       bool     `json:"success"`
	Format        string   `json:"format"`
	OutputDir     string   `json:"output_dir"`
	ExportedCount int      `json:"exported_count"`
	Files         []string `json:"files"`
}

type ExportFormatInfo struct {
	Value       ExportFormat `json:"value"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
}

// ExportArchive is a downloaded export.
type ExportArchive struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CleanResult struct {
	Success      bool `json:"success"`
	CleanedItems int  `json:"cleaned_items"`
}

type TrainingConfig struct {
	Weights      string  `json:"weights"`
	DataYAML     string  `json:"data_yaml"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	ImgSize      int     `json:"img_size"`
	LearningRate float64 `json:"learning_rate"`
	Project      string  `json:"project"`
	Name         string  `json:"name"`
	Device       string  `json:"device"`
	Workers      int     `json:"workers"`
	Patience     int     `json:"patience"`
	Optimizer    string  `json:"optimizer"`
}

// DefaultTrainingConfig returns the backend's defaults for dataYAML.
func DefaultTrainingConfig(dataYAML string) TrainingConfig {
	return TrainingConfig{
		Weights:      DefaultWeights,
		DataYAML:     dataYAML,
		Epochs:       100,
		BatchSize:    16,
		ImgSize:      DefaultImgSize,
		LearningRate: 0.01,
		Project:      "runs/train",
		Name:         "exp",
		Workers:      8,
		Patience:     100,
		Optimizer:    "SGD",
	}
}

type TrainingTask struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type TrainingStatus struct {
	TaskID       string         `json:"task_id"`
	Status       string         `json:"status"`
	Progress     float64        `json:"progress"`
	CurrentEpoch int            `json:"current_epoch"`
	TotalEpochs  int            `json:"total_epochs"`
	Metrics      map[string]any `json:"metrics"`
	Message      string         `json:"message"`
}

type TrainingOutput struct {
	TaskID string   `json:"task_id"`
	Output []string `json:"output"`
}

type TrainingTaskSummary struct {
	TaskID    string  `json:"task_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	CreatedAt string  `json:"created_at"`
	Message   string  `json:"message"`
}

type TrainingTaskList struct {
	Tasks []TrainingTaskSummary `json:"tasks"`
	Total int                   `json:"total"`
}

type TrainingResults struct {
	TaskID         string            `json:"task_id"`
	ResultsDir     string            `json:"results_dir"`
	Weights        map[string]string `json:"weights"`
	Plots          []string          `json:"plots"`
	MetricsHistory []map[string]any  `json:"metrics_history"`
}

type TrainingDataset struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
}

type Hyperparameters struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type DatasetSummary struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Type       string   `json:"type"`
	Classes    []string `json:"classes"`
	NumClasses int      `json:"num_classes"`
}

type DatasetSplit struct {
	Train int `json:"train"`
	Val   int `json:"val"`
	Test  int `json:"test"`
}

type DatasetInfo struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Classes    []string       `json:"classes"`
	NumClasses int            `json:"num_classes"`
	Split      DatasetSplit   `json:"split"`
	Config     map[string]any `json:"config"`
}

type NewDataset struct {
	Name        string
	Classes     []string
	Description string
}

type CreatedDataset struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	YAMLPath string   `json:"yaml_path"`
	Classes  []string `json:"classes"`
}

type CreateDatasetResult struct {
	MutationResult

	Dataset CreatedDataset `json:"dataset"`
}

type UploadResult struct {
	Success       bool     `json:"success"`
	Uploaded      int      `json:"uploaded"`
	Failed        int      `json:"failed"`
	UploadedFiles []string `json:"uploaded_files"`
	FailedFiles   []string `json:"failed_files"`
}

type DatasetImage struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type DatasetImagePage struct {
	Images   []DatasetImage `json:"images"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// AugmentOptions are optional image operations. Nil fields are not sent.
type AugmentOptions struct {
	ResizeWidth    *int
	ResizeHeight   *int
	Rotate         *float64
	FlipHorizontal bool
	FlipVertical   bool
	Brightness     *float64
	Contrast       *float64
	Saturation     *float64
	HueShift       *int
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type AugmentResult struct {
	Success       bool      `json:"success"`
	OriginalSize  ImageSize `json:"original_size"`
	AugmentedSize ImageSize `json:"augmented_size"`
	AugmentedPath string    `json:"augmented_path"`
}

// AugmentOperations is applied to every file of a batch augmentation.
type AugmentOperations struct {
	Resize         []int    `json:"resize,omitempty"`
	Rotate         *float64 `json:"rotate,omitempty"`
	FlipHorizontal bool     `json:"flip_horizontal,omitempty"`
	Brightness     *float64 `json:"brightness,omitempty"`
	Contrast       *float64 `json:"contrast,omitempty"`
}

type BatchAugmentItem struct {
	OriginalName  string `json:"original_name"`
	AugmentedPath string `json:"augmented_path"`
	Error         string `json:"error"`
	Success       bool   `json:"success"`
}

type BatchAugmentResult struct {
	Results []BatchAugmentItem `json:"results"`
	Total   int                `json:"total"`
}

type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Mode   string `json:"mode"`
}

type QualityReport struct {
	Filename      string    `json:"filename"`
	BlurScore     float64   `json:"blur_score"`
	BlurThreshold float64   `json:"blur_threshold"`
	IsBlurry      bool      `json:"is_blurry"`
	Quality       string    `json:"quality"`
	ImageInfo     ImageInfo `json:"image_info"`
	Error         string    `json:"error,omitempty"`
}

type BatchQualityReport struct {
	Results     []QualityReport `json:"results"`
	Total       int             `json:"total"`
	BlurryCount int             `json:"blurry_count"`
	QualityRate float64         `json:"quality_rate"`
}
