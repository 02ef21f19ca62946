package cli

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/manga-bubble-detector/internal/config"
)

// newLogger builds the process logger. It always writes to stderr so stdout
// stays free for command output and the MCP protocol stream.
func newLogger(s config.LogSettings, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if s.Format == "" || s.Format == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
	}

	if s.Level != "" {
		level, err := zap.ParseAtomicLevel(s.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", s.Level, err)
		}
		cfg.Level = level
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
