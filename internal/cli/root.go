package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/config"
	"github.com/ironsheep/manga-bubble-detector/internal/detection"
	"github.com/ironsheep/manga-bubble-detector/internal/detection/ultralytics"
	"github.com/ironsheep/manga-bubble-detector/internal/pipeline"
)

// BuildInfo identifies the binary for the version command.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// configKeyAnnotation marks a flag with the viper key it overrides.
const configKeyAnnotation = "bubble-detector/config-key"

// Backend is the detector the train and inference commands drive.
type Backend interface {
	detection.Trainer
	detection.Predictor
}

// NewBackend builds the detector backend from settings.
var NewBackend = func(s *config.Settings, log *zap.Logger) Backend {
	return ultralytics.New(s.Backend.Command, s.Model.Dir, log)
}

// app carries state shared by all commands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	settings   *config.Settings
	log        *zap.Logger
}

func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.New(a.settings, a.log)
}

func (a *app) pipelineWithBackend() *pipeline.Pipeline {
	p := a.pipeline()
	backend := NewBackend(a.settings, a.log)
	p.Trainer = backend
	p.Predictor = backend
	return p
}

// NewRootCommand returns the bubble-detector command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "bubble-detector",
		Short: "Manga speech bubble detection toolkit",
		Long: `bubble-detector prepares manga page datasets, trains an object detector on
them through the Ultralytics YOLO command line, and cleans up and renders
its predictions.

Typical flow:
  bubble-detector prepare --input data/raw --output data
  bubble-detector train
  bubble-detector infer --model models/best.pt --test-dir data/test_set`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (default ./bubble-detector.yaml or ~/.config/bubble-detector/bubble-detector.yaml)")
	root.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	bindFlag(root.PersistentFlags(), "debug", "debug")

	root.AddCommand(
		prepareCommand(a),
		splitCommand(a),
		repairCommand(a),
		trainCommand(a),
		inferCommand(a),
		visualizeCommand(a),
		inspectCommand(a),
		serveCommand(a),
		versionCommand(info),
	)
	return root
}

// bindFlag records that flag overrides the config key.
func bindFlag(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, configKeyAnnotation, []string{key})
}

// setup binds the flags of the running command, loads the configuration and
// builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(keys[0], f)
	})
	if bindErr != nil {
		return bindErr
	}

	settings, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.settings = settings

	if a.log, err = newLogger(settings.Log, settings.Debug); err != nil {
		return err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("loaded config", zap.String("file", used))
	}
	return nil
}

// Execute runs the command tree with ctx and returns the exit code.
func Execute(ctx context.Context, info BuildInfo, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(info)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(os.Stdin)

	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
