// Package cli defines the bubble-detector command tree. Every flag that
// mirrors a configuration key is bound to viper, so the precedence is flag,
// then BUBBLE_* environment variable, then config file, then default.
package cli
