package labels

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Counts maps a category id to its number of instances.
type Counts map[int]int

// Add accumulates other into c.
func (c Counts) Add(other Counts) {
	for class, n := range other {
		c[class] += n
	}
}

// Total is the number of instances across all categories.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Has reports whether class has at least one instance.
func (c Counts) Has(class int) bool {
	return c[class] > 0
}

// Classes returns the category ids present, ascending.
func (c Counts) Classes() []int {
	classes := make([]int, 0, len(c))
	for class := range c {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}

// CountFile counts category instances in one annotation file.
//
// A missing or unreadable file yields an empty table and a warning. Lines
// with fewer than five fields or a non-integer class are skipped silently.
// The sum of the result always equals the number of the remaining lines.
func CountFile(path string, log *zap.Logger) Counts {
	counts := make(Counts)

	f, err := os.Open(path)
	if err != nil {
		log.Warn("cannot read label file", zap.String("path", path), zap.Error(err))
		return counts
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		class, ok := ParseClass(scanner.Text())
		if !ok {
			continue
		}
		counts[class]++
	}
	if err := scanner.Err(); err != nil {
		log.Warn("label file read interrupted", zap.String("path", path), zap.Error(err))
	}

	return counts
}

// CountDir sums CountFile over every annotation file in dir.
func CountDir(dir string, log *zap.Logger) (Counts, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	counts := make(Counts)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		counts.Add(CountFile(filepath.Join(dir, e.Name()), log))
	}
	return counts, nil
}
