package pipeline

import (
	"errors"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/config"
	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
)

var (
	// ErrModelNotFound is returned by Infer when the checkpoint does not exist.
	ErrModelNotFound = errors.New("model not found")
	// ErrTestDirNotFound is returned by Infer when the test directory does not exist.
	ErrTestDirNotFound = errors.New("test set directory not found")
	// ErrNoAnnotations is returned by Train when the train partition has no labels.
	ErrNoAnnotations = errors.New("no annotations in training labels")
)

// Pipeline binds the stages to one configuration and detector backend.
type Pipeline struct {
	Settings  *config.Settings
	Logger    *zap.Logger
	Trainer   detection.Trainer
	Predictor detection.Predictor
}

// New returns a Pipeline without a detector backend. Set Trainer and
// Predictor before calling Train or Infer.
func New(s *config.Settings, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{Settings: s, Logger: log}
}

func (p *Pipeline) layout() dataset.Layout {
	return dataset.Layout{Root: p.Settings.Data.Output}
}

// Rules returns the post-processing rules from the settings.
func (p *Pipeline) Rules() detection.Rules {
	r := p.Settings.Rules
	return detection.Rules{
		SquareMin:     r.SquareMin,
		SquareMax:     r.SquareMax,
		SquareMaxConf: r.SquareMaxConf,
		WideMinRatio:  r.WideMinRatio,
		WideMaxConf:   r.WideMaxConf,
		Primary:       r.Primary,
		Secondary:     r.Secondary,
		Interface:     r.Interface,
	}
}

// Palette returns the category names and colors from the settings.
func (p *Pipeline) Palette() (*imaging.Palette, error) {
	entries := make([]imaging.PaletteEntry, 0, len(p.Settings.Categories))
	for _, c := range p.Settings.Categories {
		entries = append(entries, imaging.PaletteEntry{ID: c.ID, Name: c.Name, Color: c.Color})
	}
	return imaging.NewPalette(entries)
}
