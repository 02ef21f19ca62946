package training

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/manga-bubble-detector/internal/dataset"
)

// DataConfigFile is the name of the dataset config written next to images/.
const DataConfigFile = "data_balanced.yaml"

// DataConfig is the dataset description read by the detector's trainer.
type DataConfig struct {
	Path    string          `yaml:"path"`
	Train   string          `yaml:"train"`
	Val     string          `yaml:"val"`
	Names   map[int]string  `yaml:"names"`
	Weights map[int]float64 `yaml:"weights"`
}

// NewDataConfig describes the dataset rooted at baseDir. Path is made
// absolute so the trainer can run from any working directory.
func NewDataConfig(baseDir string, names map[int]string, weights map[int]float64) (*DataConfig, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", baseDir, err)
	}
	return &DataConfig{
		Path:    abs,
		Train:   filepath.ToSlash(filepath.Join("images", dataset.Train)),
		Val:     filepath.ToSlash(filepath.Join("images", dataset.Val)),
		Names:   names,
		Weights: weights,
	}, nil
}

// WriteDataConfig writes baseDir/data_balanced.yaml and returns its path.
func WriteDataConfig(baseDir string, names map[int]string, weights map[int]float64) (string, error) {
	cfg, err := NewDataConfig(baseDir, names, weights)
	if err != nil {
		return "", err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode data config: %w", err)
	}

	path := filepath.Join(baseDir, DataConfigFile)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write data config: %w", err)
	}
	return path, nil
}

// ReadDataConfig loads a config written by WriteDataConfig.
func ReadDataConfig(path string) (*DataConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data config: %w", err)
	}
	var cfg DataConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse data config %s: %w", path, err)
	}
	return &cfg, nil
}
