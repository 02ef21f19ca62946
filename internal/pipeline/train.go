package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/labels"
	"github.com/ironsheep/manga-bubble-detector/internal/training"
)

// TrainReport describes a finished training run.
type TrainReport struct {
	Run        string          `json:"run"`
	DataConfig string          `json:"data_config"`
	Weights    map[int]float64 `json:"weights"`
	// RunCheckpoint is the best checkpoint inside the run directory;
	// Checkpoint is the copy promoted into the models directory.
	RunCheckpoint string `json:"run_checkpoint"`
	Checkpoint    string `json:"checkpoint"`
}

// Train counts the training annotations, writes the weighted dataset config,
// trains a new run and copies its best checkpoint to <models>/best.pt.
func (p *Pipeline) Train(ctx context.Context) (*TrainReport, error) {
	if p.Trainer == nil {
		return nil, errors.New("no trainer configured")
	}
	s := p.Settings
	layout := p.layout()

	if err := os.MkdirAll(s.Model.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create models directory: %w", err)
	}
	run, err := training.NextRunName(s.Model.Dir)
	if err != nil {
		return nil, err
	}
	log := p.Logger.With(zap.String("run", run))

	counts, err := labels.CountDir(layout.LabelsDir(dataset.Train), log)
	if err != nil {
		return nil, err
	}
	if counts.Total() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAnnotations, layout.LabelsDir(dataset.Train))
	}

	weights := training.ClassWeights(counts)
	for _, class := range counts.Classes() {
		log.Debug("class weight", zap.Int("class", class), zap.Int("count", counts[class]),
			zap.Float64("weight", weights[class]))
	}

	dataConfig, err := training.WriteDataConfig(layout.Root, s.CategoryNames(), weights)
	if err != nil {
		return nil, err
	}

	log.Info("training model", zap.String("data", dataConfig))
	runCheckpoint, err := p.Trainer.Train(ctx, dataConfig, training.FromSettings(s.Train), run)
	if err != nil {
		return nil, err
	}

	final := filepath.Join(s.Model.Dir, filepath.Base(runCheckpoint))
	if err := dataset.CopyFile(runCheckpoint, final); err != nil {
		return nil, fmt.Errorf("failed to promote checkpoint: %w", err)
	}
	log.Info("best model copied", zap.String("checkpoint", final))

	return &TrainReport{
		Run:           run,
		DataConfig:    dataConfig,
		Weights:       weights,
		RunCheckpoint: runCheckpoint,
		Checkpoint:    final,
	}, nil
}
