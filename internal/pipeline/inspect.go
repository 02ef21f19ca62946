package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
	"github.com/ironsheep/manga-bubble-detector/internal/ocr"
)

// bubblePad is the margin added around a detection before reading its text.
const bubblePad = 4

// InspectedImage is one page with its cleaned detections and, when
// requested, the text read from each detection in the same order.
type InspectedImage struct {
	Path        string                `json:"path"`
	Detections  []detection.Detection `json:"detections"`
	Transcripts []ocr.Transcript      `json:"transcripts,omitempty"`
}

// Inspect predicts imageDir with checkpoint and applies the rules without
// sanitizing or rendering anything. With readText set, each detection's
// region is transcribed.
func (p *Pipeline) Inspect(ctx context.Context, checkpoint, imageDir string, readText bool) ([]InspectedImage, error) {
	if !exists(checkpoint) {
		return nil, fmt.Errorf("%w at %s", ErrModelNotFound, checkpoint)
	}
	if p.Predictor == nil {
		return nil, errors.New("no predictor configured")
	}

	results, err := p.Predictor.Predict(ctx, checkpoint, imageDir)
	if err != nil {
		return nil, err
	}
	cleaned := p.Rules().ApplyAll(results)

	out := make([]InspectedImage, len(results))
	var (
		cache       *imaging.ImageCache
		transcriber *ocr.Transcriber
	)
	if readText {
		cache = imaging.NewImageCache()
		transcriber = ocr.NewTranscriber(p.Settings.Infer.Language)
	}

	for i, res := range results {
		out[i] = InspectedImage{Path: res.Path, Detections: cleaned[i]}
		if !readText || len(cleaned[i]) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := cache.Load(res.Path)
		if err != nil {
			p.Logger.Warn("skipping transcription", zap.String("path", res.Path), zap.Error(err))
			continue
		}
		out[i].Transcripts, err = transcriber.TranscribeRegions(img, detectionRegions(img, cleaned[i]))
		if err != nil {
			return nil, err
		}
		cache.Evict(res.Path)
	}
	return out, nil
}

func detectionRegions(img image.Image, dets []detection.Detection) []image.Rectangle {
	regions := make([]image.Rectangle, len(dets))
	for i, d := range dets {
		regions[i] = imaging.DetectionRect(d, bubblePad, img.Bounds())
	}
	return regions
}
