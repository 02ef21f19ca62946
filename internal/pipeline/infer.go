package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
	"github.com/ironsheep/manga-bubble-detector/internal/labels"
)

// ProcessedImage is one inferred page.
type ProcessedImage struct {
	Source     string                `json:"source"`
	Output     string                `json:"output"`
	Detections []detection.Detection `json:"detections"`
}

// InferReport lists the pages written by Infer.
type InferReport struct {
	Checkpoint string           `json:"checkpoint"`
	TestDir    string           `json:"test_dir"`
	OutputDir  string           `json:"output_dir"`
	Images     []ProcessedImage `json:"images"`
}

// Infer runs checkpoint over testDir: the images are sanitized in place,
// predicted, cleaned by the rule engine and rendered to
// <output>/processed_<stem>.jpg. A missing checkpoint or test directory is
// reported as ErrModelNotFound or ErrTestDirNotFound before anything runs.
func (p *Pipeline) Infer(ctx context.Context, checkpoint, testDir string) (*InferReport, error) {
	if !exists(checkpoint) {
		return nil, fmt.Errorf("%w at %s", ErrModelNotFound, checkpoint)
	}
	if !exists(testDir) {
		return nil, fmt.Errorf("%w at %s", ErrTestDirNotFound, testDir)
	}
	if p.Predictor == nil {
		return nil, errors.New("no predictor configured")
	}

	palette, err := p.Palette()
	if err != nil {
		return nil, err
	}
	renderer := imaging.NewRenderer(palette)

	if _, err := imaging.Sanitize(testDir, p.Logger); err != nil {
		return nil, err
	}

	p.Logger.Info("running inference", zap.String("test_dir", testDir), zap.String("model", checkpoint))
	results, err := p.Predictor.Predict(ctx, checkpoint, testDir)
	if err != nil {
		return nil, err
	}
	cleaned := p.Rules().ApplyAll(results)

	outDir := p.Settings.Infer.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	report := &InferReport{Checkpoint: checkpoint, TestDir: testDir, OutputDir: outDir}
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := filepath.Join(outDir, "processed_"+labels.Stem(res.Path)+".jpg")
		if err := renderer.Render(res.Path, cleaned[i], out); err != nil {
			return nil, err
		}
		p.Logger.Info("saved processed image", zap.String("output", out), zap.Int("detections", len(cleaned[i])))
		report.Images = append(report.Images, ProcessedImage{Source: res.Path, Output: out, Detections: cleaned[i]})
	}

	p.Logger.Info("inference complete", zap.Int("images", len(report.Images)))
	return report, nil
}

// Visualize is Infer on the configured test directory, seeding it from the
// validation images first when it does not exist yet.
func (p *Pipeline) Visualize(ctx context.Context, checkpoint string) (*InferReport, error) {
	testDir := p.Settings.Infer.TestDir
	if _, err := PrepareTestDir(testDir, p.layout().ImagesDir(dataset.Val), p.Settings.Infer.Samples, p.Logger); err != nil {
		return nil, err
	}
	return p.Infer(ctx, checkpoint, testDir)
}

// PrepareTestDir creates testDir and copies up to limit images from valDir
// into it, in filename order. An existing testDir is left alone. It returns
// the number of images copied.
func PrepareTestDir(testDir, valDir string, limit int, log *zap.Logger) (int, error) {
	if exists(testDir) {
		return 0, nil
	}
	log.Warn("test directory does not exist, creating it", zap.String("dir", testDir))
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create test directory: %w", err)
	}

	names, err := dataset.ListImages(valDir)
	if err != nil {
		return 0, err
	}
	if len(names) > limit {
		names = names[:limit]
	}
	for _, name := range names {
		if err := dataset.CopyFile(filepath.Join(valDir, name), filepath.Join(testDir, name)); err != nil {
			return 0, err
		}
		log.Debug("copied validation image to test directory", zap.String("file", name))
	}
	return len(names), nil
}

// Describe writes a plain listing of each processed image's detections.
func Describe(w io.Writer, report *InferReport, palette *imaging.Palette) error {
	for _, img := range report.Images {
		if _, err := fmt.Fprintf(w, "%s:\n", filepath.Base(img.Source)); err != nil {
			return err
		}
		if err := DescribeDetections(w, img.Detections, palette); err != nil {
			return err
		}
	}
	return nil
}

// DescribeDetections writes one line per detection: category, confidence and
// box as x,y widthxheight.
func DescribeDetections(w io.Writer, dets []detection.Detection, palette *imaging.Palette) error {
	if len(dets) == 0 {
		_, err := fmt.Fprintln(w, "  no detections")
		return err
	}
	for _, d := range dets {
		_, err := fmt.Fprintf(w, "  %-10s %.2f  at %.0f,%.0f %.0fx%.0f\n",
			palette.Name(d.Class), d.Confidence, d.X, d.Y, d.Width, d.Height)
		if err != nil {
			return err
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
