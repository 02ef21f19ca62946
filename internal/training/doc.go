// Package training turns a prepared dataset into the inputs the external
// detector needs for a training run: per-category loss weights, the dataset
// config file, the run name, and the hyperparameters.
package training
