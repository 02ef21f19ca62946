package detection

import "context"

// Hyperparameters configure one training run of the external detector.
type Hyperparameters struct {
	BaseModel     string
	Epochs        int
	ImageSize     int
	Patience      int
	Batch         int
	CosLR         bool
	Mixup         float64
	CopyPaste     float64
	Degrees       float64
	Scale         float64
	Workers       int
	Optimizer     string
	Seed          int64
	Deterministic bool
	Cache         bool
	AMP           bool
	Device        string
}

// Trainer trains a detector from a dataset config file and returns the path
// of the best checkpoint produced by the run.
type Trainer interface {
	Train(ctx context.Context, dataConfig string, hp Hyperparameters, run string) (string, error)
}

// Predictor runs a checkpoint over every image in a directory.
type Predictor interface {
	Predict(ctx context.Context, checkpoint, imageDir string) ([]ImageResult, error)
}
