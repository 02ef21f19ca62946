package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
	"github.com/ironsheep/manga-bubble-detector/internal/labels"
	"github.com/ironsheep/manga-bubble-detector/internal/ocr"
	"github.com/ironsheep/manga-bubble-detector/internal/training"
)

// defaultOCRPad is the margin added around a detection before transcription.
const defaultOCRPad = 4

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "labels_count", "detections_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return s.result(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Dataset
	case "labels_count":
		return s.handleLabelsCount(args)
	case "dataset_split":
		return s.handleDatasetSplit(args)
	case "class_weights":
		return s.handleClassWeights(args)
	case "images_sanitize":
		return s.handleImagesSanitize(args)
	case "image_info":
		return s.handleImageInfo(args)

	// Detections
	case "detections_postprocess":
		return s.handleDetectionsPostprocess(args)
	case "detections_render":
		return s.handleDetectionsRender(args)
	case "detection_crop":
		return s.handleDetectionCrop(args)
	case "detections_ocr":
		return s.handleDetectionsOCR(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse builds a JSON-RPC error; an empty data is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	rpcErr := &MCPError{Code: code, Message: message}
	if data != "" {
		rpcErr.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: rpcErr}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decode(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Dataset Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

type countsResult struct {
	Counts labels.Counts `json:"counts"`
	Total  int           `json:"total"`
}

func (s *Server) handleLabelsCount(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	info, err := os.Stat(a.Path)
	if err != nil {
		return nil, err
	}
	var counts labels.Counts
	if info.IsDir() {
		if counts, err = labels.CountDir(a.Path, s.log); err != nil {
			return nil, err
		}
	} else {
		counts = labels.CountFile(a.Path, s.log)
	}
	return &countsResult{Counts: counts, Total: counts.Total()}, nil
}

type datasetSplitArgs struct {
	ImagesDir string   `json:"images_dir"`
	LabelsDir string   `json:"labels_dir"`
	Ratio     *float64 `json:"ratio"`
	Seed      *int64   `json:"seed"`
}

func (s *Server) handleDatasetSplit(args json.RawMessage) (interface{}, error) {
	var a datasetSplitArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	splitter := dataset.Splitter{Ratio: s.settings.Split.Ratio, Seed: s.settings.Split.Seed, Logger: s.log}
	if a.Ratio != nil {
		splitter.Ratio = *a.Ratio
	}
	if a.Seed != nil {
		splitter.Seed = *a.Seed
	}
	return splitter.Split(a.ImagesDir, a.LabelsDir)
}

type classWeightsArgs struct {
	Counts    labels.Counts `json:"counts"`
	LabelsDir string        `json:"labels_dir"`
}

type classWeightsResult struct {
	Counts  labels.Counts   `json:"counts"`
	Weights map[int]float64 `json:"weights"`
}

func (s *Server) handleClassWeights(args json.RawMessage) (interface{}, error) {
	var a classWeightsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	counts := a.Counts
	if a.LabelsDir != "" {
		var err error
		if counts, err = labels.CountDir(a.LabelsDir, s.log); err != nil {
			return nil, err
		}
	}
	if counts.Total() == 0 {
		return nil, errors.New("counts or labels_dir with at least one annotation is required")
	}
	return &classWeightsResult{Counts: counts, Weights: training.ClassWeights(counts)}, nil
}

type sanitizeArgs struct {
	Dir string `json:"dir"`
}

func (s *Server) handleImagesSanitize(args json.RawMessage) (interface{}, error) {
	var a sanitizeArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	fixed, err := imaging.Sanitize(a.Dir, s.log)
	if err != nil {
		return nil, err
	}
	// Rewritten files invalidate anything cached from the directory.
	s.cache.Clear()
	return map[string]interface{}{"dir": a.Dir, "fixed": fixed}, nil
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type postprocessArgs struct {
	Detections []detection.RawDetection `json:"detections"`
}

func (s *Server) handleDetectionsPostprocess(args json.RawMessage) (interface{}, error) {
	var a postprocessArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return s.pipeline.Rules().ApplyImage(a.Detections), nil
}

type renderArgs struct {
	Path       string                `json:"path"`
	Output     string                `json:"output"`
	Detections []detection.Detection `json:"detections"`
}

func (s *Server) handleDetectionsRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errors.New("output is required")
	}

	palette, err := s.pipeline.Palette()
	if err != nil {
		return nil, err
	}
	if err := imaging.NewRenderer(palette).Render(a.Path, a.Detections, a.Output); err != nil {
		return nil, err
	}
	s.cache.Evict(a.Output)
	return map[string]interface{}{"output": a.Output, "detections": len(a.Detections)}, nil
}

type detectionCropArgs struct {
	Path      string              `json:"path"`
	Detection detection.Detection `json:"detection"`
	Pad       int                 `json:"pad"`
	Scale     float64             `json:"scale"`
}

func (s *Server) handleDetectionCrop(args json.RawMessage) (interface{}, error) {
	var a detectionCropArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropDetection(img, a.Detection, a.Pad, a.Scale)
}

type detectionsOCRArgs struct {
	Path       string                `json:"path"`
	Detections []detection.Detection `json:"detections"`
	Language   string                `json:"language"`
	Pad        *int                  `json:"pad"`
}

func (s *Server) handleDetectionsOCR(args json.RawMessage) (interface{}, error) {
	var a detectionsOCRArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.settings.Infer.Language
	}
	pad := defaultOCRPad
	if a.Pad != nil {
		pad = *a.Pad
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	regions := make([]image.Rectangle, len(a.Detections))
	for i, d := range a.Detections {
		regions[i] = imaging.DetectionRect(d, pad, img.Bounds())
	}
	return ocr.NewTranscriber(a.Language).TranscribeRegions(img, regions)
}
