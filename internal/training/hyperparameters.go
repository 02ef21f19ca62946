package training

import (
	"github.com/ironsheep/manga-bubble-detector/internal/config"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
)

// FromSettings copies the configured training knobs into the form the
// detector backend consumes.
func FromSettings(s config.TrainSettings) detection.Hyperparameters {
	return detection.Hyperparameters{
		BaseModel:     s.BaseModel,
		Epochs:        s.Epochs,
		ImageSize:     s.ImageSize,
		Patience:      s.Patience,
		Batch:         s.Batch,
		CosLR:         s.CosLR,
		Mixup:         s.Mixup,
		CopyPaste:     s.CopyPaste,
		Degrees:       s.Degrees,
		Scale:         s.Scale,
		Workers:       s.Workers,
		Optimizer:     s.Optimizer,
		Seed:          s.Seed,
		Deterministic: s.Deterministic,
		Cache:         s.Cache,
		AMP:           s.AMP,
		Device:        s.Device,
	}
}
