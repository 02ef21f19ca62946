package training

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const runPrefix = "run"

// NextRunName returns the first unused run name in modelsDir: "run1" when
// there are no runs yet, otherwise run<N+1> for the highest existing run<N>.
// Entries whose suffix is not a positive integer are ignored, and a missing
// modelsDir counts as empty.
func NextRunName(modelsDir string) (string, error) {
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return runPrefix + "1", nil
		}
		return "", fmt.Errorf("failed to list runs: %w", err)
	}

	highest := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), runPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), runPrefix))
		if err != nil || n <= 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return runPrefix + strconv.Itoa(highest+1), nil
}
