package ultralytics

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
	"github.com/ironsheep/manga-bubble-detector/internal/labels"
)

// DefaultCommand is the Ultralytics CLI entry point.
const DefaultCommand = "yolo"

const predictRun = "predict"

// Ultralytics implements detection.Trainer and detection.Predictor on top of
// the yolo command.
type Ultralytics struct {
	// Command is the executable to run, "yolo" when empty.
	Command string
	// Project is the directory training runs are written under.
	Project string
	Runner  Runner
	Logger  *zap.Logger
}

var (
	_ detection.Trainer   = (*Ultralytics)(nil)
	_ detection.Predictor = (*Ultralytics)(nil)
)

// New returns a backend running command with output logged to log.
func New(command, project string, log *zap.Logger) *Ultralytics {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ultralytics{
		Command: command,
		Project: project,
		Runner:  ExecRunner{Logger: log},
		Logger:  log,
	}
}

func (u *Ultralytics) command() string {
	if u.Command == "" {
		return DefaultCommand
	}
	return u.Command
}

func (u *Ultralytics) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}

// Train runs one training job and returns <Project>/<run>/weights/best.pt.
// The run counts as failed if the command succeeds but leaves no checkpoint.
func (u *Ultralytics) Train(ctx context.Context, dataConfig string, hp detection.Hyperparameters, run string) (string, error) {
	log := u.logger().With(zap.String("run", run))
	log.Info("starting training", zap.String("data", dataConfig), zap.String("model", hp.BaseModel),
		zap.Int("epochs", hp.Epochs))

	if err := u.Runner.Run(ctx, u.command(), TrainArgs(dataConfig, hp, u.Project, run)); err != nil {
		return "", fmt.Errorf("training run %s: %w", run, err)
	}

	best := filepath.Join(u.Project, run, "weights", "best.pt")
	if _, err := os.Stat(best); err != nil {
		return "", fmt.Errorf("training run %s left no checkpoint: %w", run, err)
	}

	log.Info("training complete", zap.String("checkpoint", best))
	return best, nil
}

// Predict runs checkpoint over every image in imageDir. Results are returned
// in filename order with box coordinates in pixels. Images the detector wrote
// no label file for have no detections.
func (u *Ultralytics) Predict(ctx context.Context, checkpoint, imageDir string) ([]detection.ImageResult, error) {
	log := u.logger()

	names, err := dataset.ListImages(imageDir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	project, err := os.MkdirTemp("", "bubble-predict-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction workspace: %w", err)
	}
	defer os.RemoveAll(project)

	if err := u.Runner.Run(ctx, u.command(), PredictArgs(checkpoint, imageDir, project, predictRun)); err != nil {
		return nil, fmt.Errorf("prediction: %w", err)
	}

	labelsDir := filepath.Join(project, predictRun, "labels")
	results := make([]detection.ImageResult, 0, len(names))
	for _, name := range names {
		path := filepath.Join(imageDir, name)
		width, height, err := imaging.Dimensions(path)
		if err != nil {
			log.Warn("skipping image", zap.String("path", path), zap.Error(err))
			continue
		}

		dets, err := ReadPredictions(labels.LabelPath(labelsDir, name), width, height)
		if err != nil {
			return nil, err
		}
		results = append(results, detection.ImageResult{Path: path, Detections: dets})
	}

	log.Debug("prediction complete", zap.String("dir", imageDir), zap.Int("images", len(results)))
	return results, nil
}

// ReadPredictions parses a normalized prediction label file and converts each
// line to a pixel-space detection for an image of the given size. A missing
// file means no detections. Malformed lines are skipped.
func ReadPredictions(path string, width, height int) ([]detection.RawDetection, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	defer f.Close()

	w, h := float64(width), float64(height)
	var dets []detection.RawDetection
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rec, conf, ok := labels.ParsePrediction(scanner.Text())
		if !ok {
			continue
		}
		dets = append(dets, detection.RawDetection{
			Box: detection.Box{
				X1: (rec.XCenter - rec.Width/2) * w,
				Y1: (rec.YCenter - rec.Height/2) * h,
				X2: (rec.XCenter + rec.Width/2) * w,
				Y2: (rec.YCenter + rec.Height/2) * h,
			},
			Confidence: conf,
			Class:      rec.Class,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return dets, nil
}
