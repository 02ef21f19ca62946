package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
	"github.com/ironsheep/manga-bubble-detector/internal/labels"
)

// PrepareReport summarizes a dataset preparation run.
type PrepareReport struct {
	Output string        `json:"output"`
	Train  int           `json:"train"`
	Val    int           `json:"val"`
	Counts labels.Counts `json:"counts"`
	// FixedTrain and FixedVal count the images rewritten by the sanitizer.
	FixedTrain int `json:"fixed_train"`
	FixedVal   int `json:"fixed_val"`
}

// Total is the number of images copied into either partition.
func (r *PrepareReport) Total() int {
	return r.Train + r.Val
}

// Prepare builds the train/val dataset from the raw directories: it creates
// the output layout, splits, copies both partitions and sanitizes the copies.
func (p *Pipeline) Prepare(ctx context.Context) (*PrepareReport, error) {
	report, err := p.Split(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layout := p.layout()
	p.Logger.Info("sanitizing images")
	if report.FixedTrain, err = imaging.Sanitize(layout.ImagesDir(dataset.Train), p.Logger); err != nil {
		return nil, err
	}
	if report.FixedVal, err = imaging.Sanitize(layout.ImagesDir(dataset.Val), p.Logger); err != nil {
		return nil, err
	}

	p.Logger.Info("dataset preparation complete",
		zap.String("output", report.Output),
		zap.Int("fixed_train", report.FixedTrain),
		zap.Int("fixed_val", report.FixedVal))
	return report, nil
}

// Split creates the output layout, runs the stratified splitter over the raw
// directories and copies each partition. Images are not sanitized.
func (p *Pipeline) Split(ctx context.Context) (*PrepareReport, error) {
	s := p.Settings
	layout := p.layout()
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	splitter := dataset.Splitter{Ratio: s.Split.Ratio, Seed: s.Split.Seed, Logger: p.Logger}
	split, err := splitter.Split(s.RawImagesDir(), s.RawLabelsDir())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &PrepareReport{Output: layout.Root, Counts: split.Counts}
	if report.Train, err = dataset.CopyPairs(split.Train, s.RawImagesDir(), s.RawLabelsDir(),
		layout.ImagesDir(dataset.Train), layout.LabelsDir(dataset.Train), p.Logger); err != nil {
		return nil, err
	}
	if report.Val, err = dataset.CopyPairs(split.Val, s.RawImagesDir(), s.RawLabelsDir(),
		layout.ImagesDir(dataset.Val), layout.LabelsDir(dataset.Val), p.Logger); err != nil {
		return nil, err
	}

	p.Logger.Info("dataset split copied",
		zap.Int("total", report.Total()),
		zap.Int("train", report.Train),
		zap.Int("val", report.Val))
	return report, nil
}

// Repair sanitizes the images of both prepared partitions in place and
// returns the number rewritten in each.
func (p *Pipeline) Repair(ctx context.Context) (fixedTrain, fixedVal int, err error) {
	layout := p.layout()
	if fixedTrain, err = imaging.Sanitize(layout.ImagesDir(dataset.Train), p.Logger); err != nil {
		return 0, 0, err
	}
	if err := ctx.Err(); err != nil {
		return fixedTrain, 0, err
	}
	if fixedVal, err = imaging.Sanitize(layout.ImagesDir(dataset.Val), p.Logger); err != nil {
		return fixedTrain, 0, err
	}
	return fixedTrain, fixedVal, nil
}
