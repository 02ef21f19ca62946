package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/config"
	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(BuildInfo{Version: "1.2.3", BuildTime: "today", GitCommit: "abc123"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig writes a config file rooting every directory under root.
func writeConfig(t *testing.T, root, extra string) string {
	t.Helper()
	content := fmt.Sprintf(`data:
  input: %[1]s/raw
  output: %[1]s/data
model:
  dir: %[1]s/models
  checkpoint: %[1]s/models/best.pt
infer:
  testdir: %[1]s/data/test_set
  outputdir: %[1]s/predictions
log:
  level: error
%[2]s`, filepath.ToSlash(root), extra)
	path := filepath.Join(root, "bubble-detector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writePage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	require.NoError(t, png.Encode(f, img))
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func rawPages(t *testing.T, rawDir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("page%02d", i)
		writePage(t, filepath.Join(rawDir, "raw_images", name+".png"))
		writeText(t, filepath.Join(rawDir, "raw_labels", name+".txt"), "0 0.5 0.5 0.2 0.2\n")
	}
}

// fakeBackend trains into the models directory and predicts one square
// bubble per image.
type fakeBackend struct {
	project string
	runs    []string
}

func (f *fakeBackend) Train(_ context.Context, _ string, _ detection.Hyperparameters, run string) (string, error) {
	f.runs = append(f.runs, run)
	best := filepath.Join(f.project, run, "weights", "best.pt")
	if err := os.MkdirAll(filepath.Dir(best), 0o755); err != nil {
		return "", err
	}
	return best, os.WriteFile(best, []byte(run), 0o644)
}

func (f *fakeBackend) Predict(_ context.Context, _ string, imageDir string) ([]detection.ImageResult, error) {
	names, err := dataset.ListImages(imageDir)
	if err != nil {
		return nil, err
	}
	results := make([]detection.ImageResult, 0, len(names))
	for _, name := range names {
		results = append(results, detection.ImageResult{
			Path: filepath.Join(imageDir, name),
			Detections: []detection.RawDetection{
				{Box: detection.Box{X1: 5, Y1: 5, X2: 25, Y2: 25}, Confidence: 0.5, Class: 0},
			},
		})
	}
	return results, nil
}

func useFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fake := &fakeBackend{}
	prev := NewBackend
	NewBackend = func(s *config.Settings, _ *zap.Logger) Backend {
		fake.project = s.Model.Dir
		return fake
	}
	t.Cleanup(func() { NewBackend = prev })
	return fake
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bubble-detector 1.2.3")
	assert.Contains(t, out, "Build time: today")
	assert.Contains(t, out, "Git commit: abc123")
}

func TestPrepare_Flags(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "")
	rawPages(t, filepath.Join(root, "elsewhere"), 6)
	output := filepath.Join(root, "prepared")

	out, err := execute(t, "", "prepare", "--config", cfg,
		"--input", filepath.Join(root, "elsewhere"), "--output", output)
	require.NoError(t, err)

	assert.Contains(t, out, "Total images: 6")
	assert.Contains(t, out, "Prepared dataset saved to: "+output)
	assert.DirExists(t, filepath.Join(output, "images", "train"))
	assert.DirExists(t, filepath.Join(output, "labels", "val"))
	assert.NoDirExists(t, filepath.Join(root, "data"))
}

func TestSplit_ConfigFile(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "")
	rawPages(t, filepath.Join(root, "raw"), 4)

	out, err := execute(t, "", "split", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "class 0: 4")
	assert.DirExists(t, filepath.Join(root, "data", "images", "train"))
}

func TestInvalidConfig(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "split:\n  ratio: 1.5\n")

	_, err := execute(t, "", "split", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split.ratio")

	_, err = execute(t, "", "split", "--config", filepath.Join(root, "missing.yaml"))
	assert.Error(t, err)
}

func TestTrain(t *testing.T) {
	fake := useFakeBackend(t)
	root := t.TempDir()
	cfg := writeConfig(t, root, "")
	writeText(t, filepath.Join(root, "data", "labels", "train", "a.txt"), "0 0.5 0.5 0.1 0.1\n3 0.5 0.5 0.1 0.1\n")

	out, err := execute(t, "", "train", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Run: run1")
	assert.Equal(t, []string{"run1"}, fake.runs)
	assert.FileExists(t, filepath.Join(root, "models", "best.pt"))
	assert.FileExists(t, filepath.Join(root, "data", "data_balanced.yaml"))
}

func TestInfer(t *testing.T) {
	useFakeBackend(t)
	root := t.TempDir()
	cfg := writeConfig(t, root, "")
	writeText(t, filepath.Join(root, "models", "best.pt"), "weights")
	testDir := filepath.Join(root, "pages")
	writePage(t, filepath.Join(testDir, "p1.png"))

	out, err := execute(t, "", "infer", "--config", cfg, "--test-dir", testDir)
	require.NoError(t, err)
	assert.Contains(t, out, "p1.png:")
	assert.Contains(t, out, "narration")
	assert.FileExists(t, filepath.Join(root, "predictions", "processed_p1.jpg"))
}

func TestInfer_MissingModel(t *testing.T) {
	useFakeBackend(t)
	root := t.TempDir()
	cfg := writeConfig(t, root, "")

	_, err := execute(t, "", "infer", "--config", cfg, "--model", filepath.Join(root, "nope.pt"))
	assert.ErrorIs(t, err, pipeline.ErrModelNotFound)

	writeText(t, filepath.Join(root, "models", "best.pt"), "weights")
	_, err = execute(t, "", "infer", "--config", cfg)
	assert.ErrorIs(t, err, pipeline.ErrTestDirNotFound)
}

func TestInspect_JSON(t *testing.T) {
	useFakeBackend(t)
	root := t.TempDir()
	cfg := writeConfig(t, root, "")
	writeText(t, filepath.Join(root, "models", "best.pt"), "weights")
	pages := filepath.Join(root, "pages")
	writePage(t, filepath.Join(pages, "p1.png"))

	out, err := execute(t, "", "inspect", pages, "--config", cfg, "--json")
	require.NoError(t, err)

	var images []pipeline.InspectedImage
	require.NoError(t, json.Unmarshal([]byte(out), &images))
	require.Len(t, images, 1)
	require.Len(t, images[0].Detections, 1)
	assert.Equal(t, 1, images[0].Detections[0].Class)
	assert.InDelta(t, 20.0, images[0].Detections[0].Width, 1e-9)

	_, err = execute(t, "", "inspect", "--config", cfg)
	assert.Error(t, err)
}

func TestServe(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "")
	in := `{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	out, err := execute(t, in, "serve", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"bubble-detector"`)
	assert.Contains(t, out, "detections_postprocess")
}
