package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/manga-bubble-detector/internal/pipeline"
	"github.com/ironsheep/manga-bubble-detector/internal/server"
)

func prepareCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Split raw pages into train/val and sanitize the copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.pipeline().Prepare(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total images: %d\n", report.Total())
			fmt.Fprintf(out, "Train images: %d\n", report.Train)
			fmt.Fprintf(out, "Val images:   %d\n", report.Val)
			fmt.Fprintf(out, "Fixed %d training images and %d validation images\n", report.FixedTrain, report.FixedVal)
			fmt.Fprintf(out, "Prepared dataset saved to: %s\n", report.Output)
			return nil
		},
	}
	addDataFlags(cmd)
	return cmd
}

func splitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split raw pages into train/val without sanitizing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.pipeline().Split(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Train images: %d\n", report.Train)
			fmt.Fprintf(out, "Val images:   %d\n", report.Val)
			return printCounts(out, report)
		},
	}
	addDataFlags(cmd)
	return cmd
}

func repairCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Re-encode unreadable or non-RGB images of a prepared dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			train, val, err := a.pipeline().Repair(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fixed %d training images and %d validation images\n", train, val)
			return nil
		},
	}
	cmd.Flags().String("output", "", "Prepared dataset directory")
	bindFlag(cmd.Flags(), "output", "data.output")
	return cmd
}

func trainCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a new run on the prepared dataset with class weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.pipelineWithBackend().Train(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run: %s\n", report.Run)
			fmt.Fprintf(out, "Dataset config: %s\n", report.DataConfig)
			fmt.Fprintf(out, "Best model copied to: %s\n", report.Checkpoint)
			return nil
		},
	}
	cmd.Flags().String("output", "", "Prepared dataset directory")
	cmd.Flags().String("models", "", "Directory holding training runs")
	cmd.Flags().Int("epochs", 0, "Training epochs")
	cmd.Flags().String("device", "", "Training device, e.g. 0 or cpu")
	bindFlag(cmd.Flags(), "output", "data.output")
	bindFlag(cmd.Flags(), "models", "model.dir")
	bindFlag(cmd.Flags(), "epochs", "train.epochs")
	bindFlag(cmd.Flags(), "device", "train.device")
	return cmd
}

func inferCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Detect, clean up and render every image in the test directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.pipelineWithBackend()
			report, err := p.Infer(cmd.Context(), a.settings.Model.Checkpoint, a.settings.Infer.TestDir)
			if err != nil {
				return err
			}
			return a.printInfer(cmd.OutOrStdout(), p, report)
		},
	}
	addModelFlag(cmd)
	cmd.Flags().String("test-dir", "", "Directory of images to run inference on")
	bindFlag(cmd.Flags(), "test-dir", "infer.testdir")
	addOutputDirFlag(cmd)
	return cmd
}

func visualizeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Seed the test directory from validation images, then infer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.pipelineWithBackend()
			report, err := p.Visualize(cmd.Context(), a.settings.Model.Checkpoint)
			if err != nil {
				return err
			}
			return a.printInfer(cmd.OutOrStdout(), p, report)
		},
	}
	addModelFlag(cmd)
	cmd.Flags().Int("samples", 0, "Validation images to copy into an empty test directory")
	bindFlag(cmd.Flags(), "samples", "infer.samples")
	addOutputDirFlag(cmd)
	return cmd
}

func inspectCommand(a *app) *cobra.Command {
	var readText, asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <image-dir>",
		Short: "Print cleaned detections, optionally with the text inside them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.pipelineWithBackend()
			images, err := p.Inspect(cmd.Context(), a.settings.Model.Checkpoint, args[0], readText)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(images)
			}
			palette, err := p.Palette()
			if err != nil {
				return err
			}
			for _, img := range images {
				fmt.Fprintf(out, "%s:\n", filepath.Base(img.Path))
				if err := pipeline.DescribeDetections(out, img.Detections, palette); err != nil {
					return err
				}
				for i, t := range img.Transcripts {
					if t.Text == "" {
						continue
					}
					fmt.Fprintf(out, "  [%d] %q (%.2f)\n", i, t.Text, t.Confidence)
				}
			}
			return nil
		},
	}
	addModelFlag(cmd)
	cmd.Flags().BoolVar(&readText, "ocr", false, "Transcribe the text inside each detection")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().String("lang", "", "Tesseract language for --ocr")
	bindFlag(cmd.Flags(), "lang", "infer.language")
	return cmd
}

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset and detection tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Info("starting MCP server on stdio")
			return server.New(a.settings, a.log).Run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func versionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bubble-detector %s\n", info.Version)
			fmt.Fprintf(out, "  Build time: %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", info.GitCommit)
		},
	}
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "Raw dataset directory holding raw_images/ and raw_labels/")
	cmd.Flags().String("output", "", "Output directory for images/ and labels/")
	cmd.Flags().Float64("ratio", 0, "Fraction of images assigned to train")
	cmd.Flags().Int64("seed", 0, "Shuffle seed")
	bindFlag(cmd.Flags(), "input", "data.input")
	bindFlag(cmd.Flags(), "output", "data.output")
	bindFlag(cmd.Flags(), "ratio", "split.ratio")
	bindFlag(cmd.Flags(), "seed", "split.seed")
}

func addModelFlag(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "Trained checkpoint")
	bindFlag(cmd.Flags(), "model", "model.checkpoint")
}

func addOutputDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("predictions", "", "Directory for rendered images")
	bindFlag(cmd.Flags(), "predictions", "infer.outputdir")
}

func (a *app) printInfer(out io.Writer, p *pipeline.Pipeline, report *pipeline.InferReport) error {
	palette, err := p.Palette()
	if err != nil {
		return err
	}
	if err := pipeline.Describe(out, report, palette); err != nil {
		return err
	}
	fmt.Fprintf(out, "Processed %d images into %s\n", len(report.Images), report.OutputDir)
	return nil
}

func printCounts(out io.Writer, report *pipeline.PrepareReport) error {
	for _, class := range report.Counts.Classes() {
		if _, err := fmt.Fprintf(out, "  class %d: %d\n", class, report.Counts[class]); err != nil {
			return err
		}
	}
	return nil
}
