// Package pipeline runs the end-to-end stages: dataset preparation,
// training through a detection.Trainer, and folder inference through a
// detection.Predictor followed by rule clean-up and rendering.
//
// Stages run one at a time and either complete or return an error before the
// next stage starts. Per-file problems inside a stage (unreadable labels,
// orphaned images, corrupted images) are logged and skipped by the packages
// doing the work; only conditions that make a stage's output meaningless
// surface here as errors.
package pipeline
