// Package config loads the toolkit settings from defaults, an optional YAML
// file, BUBBLE_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BUBBLE_SPLIT_RATIO.
const EnvPrefix = "BUBBLE"

// Category is one entry of the fixed detection class table.
type Category struct {
	ID    int    `mapstructure:"id" yaml:"id"`
	Name  string `mapstructure:"name" yaml:"name"`
	Color string `mapstructure:"color" yaml:"color"` // hex "#RRGGBB"
}

// DataSettings locates the raw and prepared dataset.
type DataSettings struct {
	Input     string `mapstructure:"input"`     // directory holding raw_images/ and raw_labels/
	Output    string `mapstructure:"output"`    // prepared dataset root (images/, labels/)
	RawImages string `mapstructure:"rawimages"` // image subdirectory name under Input
	RawLabels string `mapstructure:"rawlabels"` // label subdirectory name under Input
}

// SplitSettings controls the stratified train/val split.
type SplitSettings struct {
	Ratio float64 `mapstructure:"ratio"`
	Seed  int64   `mapstructure:"seed"`
}

// TrainSettings are handed to the external detector's training entry point.
type TrainSettings struct {
	BaseModel     string  `mapstructure:"basemodel"`
	Epochs        int     `mapstructure:"epochs"`
	ImageSize     int     `mapstructure:"imgsz"`
	Patience      int     `mapstructure:"patience"`
	Batch         int     `mapstructure:"batch"`
	CosLR         bool    `mapstructure:"coslr"`
	Mixup         float64 `mapstructure:"mixup"`
	CopyPaste     float64 `mapstructure:"copypaste"`
	Degrees       float64 `mapstructure:"degrees"`
	Scale         float64 `mapstructure:"scale"`
	Workers       int     `mapstructure:"workers"`
	Optimizer     string  `mapstructure:"optimizer"`
	Seed          int64   `mapstructure:"seed"`
	Deterministic bool    `mapstructure:"deterministic"`
	Cache         bool    `mapstructure:"cache"`
	AMP           bool    `mapstructure:"amp"`
	Device        string  `mapstructure:"device"`
}

// ModelSettings locates checkpoints.
type ModelSettings struct {
	Dir        string `mapstructure:"dir"`        // training runs and the promoted best checkpoint
	Checkpoint string `mapstructure:"checkpoint"` // checkpoint used by infer
}

// InferSettings controls folder inference.
type InferSettings struct {
	TestDir   string `mapstructure:"testdir"`
	OutputDir string `mapstructure:"outputdir"`
	Samples   int    `mapstructure:"samples"` // validation images copied when seeding a missing test dir
	Language  string `mapstructure:"language"`
}

// RuleSettings are the post-processing thresholds.
type RuleSettings struct {
	SquareMin     float64 `mapstructure:"squaremin"`
	SquareMax     float64 `mapstructure:"squaremax"`
	SquareMaxConf float64 `mapstructure:"squaremaxconf"`
	WideMinRatio  float64 `mapstructure:"wideminratio"`
	WideMaxConf   float64 `mapstructure:"widemaxconf"`
	Primary       int     `mapstructure:"primary"`
	Secondary     int     `mapstructure:"secondary"`
	Interface     int     `mapstructure:"interface"`
}

// BackendSettings selects the external detection library command.
type BackendSettings struct {
	Command string `mapstructure:"command"`
}

// LogSettings configures zap.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// Settings is the complete runtime configuration.
type Settings struct {
	Debug      bool            `mapstructure:"debug"`
	Data       DataSettings    `mapstructure:"data"`
	Split      SplitSettings   `mapstructure:"split"`
	Train      TrainSettings   `mapstructure:"train"`
	Model      ModelSettings   `mapstructure:"model"`
	Infer      InferSettings   `mapstructure:"infer"`
	Rules      RuleSettings    `mapstructure:"rules"`
	Backend    BackendSettings `mapstructure:"backend"`
	Log        LogSettings     `mapstructure:"log"`
	Categories []Category      `mapstructure:"categories"`
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (explicit path, or bubble-detector.yaml from the
// search path) into v and unmarshals the result. A missing default config
// file is not an error; a missing explicit one is.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bubble-detector")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bubble-detector"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return Unmarshal(v)
}

// Unmarshal decodes and validates the current state of v.
func Unmarshal(v *viper.Viper) (*Settings, error) {
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate rejects settings no stage could run with.
func (s *Settings) Validate() error {
	if s.Split.Ratio <= 0 || s.Split.Ratio >= 1 {
		return fmt.Errorf("split.ratio must be between 0 and 1, got %v", s.Split.Ratio)
	}
	if s.Train.Epochs <= 0 {
		return fmt.Errorf("train.epochs must be positive, got %d", s.Train.Epochs)
	}
	if len(s.Categories) == 0 {
		return errors.New("categories must not be empty")
	}
	seen := make(map[int]bool, len(s.Categories))
	for _, c := range s.Categories {
		if seen[c.ID] {
			return fmt.Errorf("duplicate category id %d", c.ID)
		}
		seen[c.ID] = true
		if c.Color == "" {
			continue
		}
		if _, err := colorful.Hex(c.Color); err != nil {
			return fmt.Errorf("category %q: invalid color %q: %w", c.Name, c.Color, err)
		}
	}
	switch s.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", s.Log.Format)
	}
	return nil
}

// CategoryNames returns the id → name table written into the training config.
func (s *Settings) CategoryNames() map[int]string {
	names := make(map[int]string, len(s.Categories))
	for _, c := range s.Categories {
		names[c.ID] = c.Name
	}
	return names
}

// RawImagesDir is the directory the splitter reads images from.
func (s *Settings) RawImagesDir() string {
	return filepath.Join(s.Data.Input, s.Data.RawImages)
}

// RawLabelsDir is the directory the splitter reads annotations from.
func (s *Settings) RawLabelsDir() string {
	return filepath.Join(s.Data.Input, s.Data.RawLabels)
}
