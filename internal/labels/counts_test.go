package labels

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeLabel(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCountFile_SkipsGarbage(t *testing.T) {
	path := writeLabel(t, t.TempDir(), "page.txt", "0 0.1 0.1 0.2 0.2\n1 0.5 0.5 0.1 0.1\ngarbage\n")

	counts := CountFile(path, zap.NewNop())
	assert.Equal(t, Counts{0: 1, 1: 1}, counts)
}

func TestCountFile_SumEqualsWellFormedLines(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wellFormed int
	}{
		{"empty", "", 0},
		{"blank lines", "\n\n\n", 0},
		{"single", "3 0.5 0.5 0.5 0.5", 1},
		{"short line", "2 0.1 0.1 0.1\n2 0.1 0.1 0.1 0.1\n", 1},
		{"extra fields kept", "4 0.1 0.1 0.1 0.1 0.99\n", 1},
		{"mixed", "0 .1 .1 .1 .1\n0 .2 .2 .2 .2\n1 .3 .3 .3 .3\nfoo bar\n\n2 1 1 1 1\n", 4},
		{"tabs and padding", "  1\t0.1\t0.1\t0.1\t0.1  \n", 1},
		{"non-numeric coords", "0 a b c d\n", 1},
		{"non-integer class", "x 0.1 0.1 0.1 0.1\n1.5 0.1 0.1 0.1 0.1\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLabel(t, t.TempDir(), "a.txt", tt.content)
			assert.Equal(t, tt.wellFormed, CountFile(path, zap.NewNop()).Total())
		})
	}
}

func TestCountFile_CoordinatesNotValidated(t *testing.T) {
	path := writeLabel(t, t.TempDir(), "a.txt", "0 a b c d\n0 0.1 0.1 0.1 0.1\n")
	assert.Equal(t, Counts{0: 2}, CountFile(path, zap.NewNop()))
}

func TestParseClass(t *testing.T) {
	class, ok := ParseClass("3 n/a n/a n/a n/a")
	require.True(t, ok)
	assert.Equal(t, 3, class)

	for _, line := range []string{"", "1 2 3 4", "x 0.1 0.1 0.1 0.1", "2.0 0.1 0.1 0.1 0.1"} {
		_, ok := ParseClass(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestCountFile_MissingFileWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	counts := CountFile(filepath.Join(t.TempDir(), "absent.txt"), zap.New(core))
	assert.Empty(t, counts)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cannot read label file", logs.All()[0].Message)
}

func TestCountDir(t *testing.T) {
	dir := t.TempDir()
	writeLabel(t, dir, "a.txt", "0 .1 .1 .1 .1\n0 .1 .1 .1 .1\n")
	writeLabel(t, dir, "b.TXT", "1 .1 .1 .1 .1\n")
	writeLabel(t, dir, "notes.md", "0 .1 .1 .1 .1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	counts, err := CountDir(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Counts{0: 2, 1: 1}, counts)
}

func TestCountDir_Missing(t *testing.T) {
	_, err := CountDir(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.Error(t, err)
}

func TestCounts_Helpers(t *testing.T) {
	c := Counts{3: 2, 0: 1}
	c.Add(Counts{0: 4, 1: 1})

	assert.Equal(t, Counts{0: 5, 1: 1, 3: 2}, c)
	assert.Equal(t, 8, c.Total())
	assert.Equal(t, []int{0, 1, 3}, c.Classes())
	assert.True(t, c.Has(3))
	assert.False(t, c.Has(2))
}

func TestParseRecord(t *testing.T) {
	rec, ok := ParseRecord("2 0.25 0.5 0.1 0.2")
	require.True(t, ok)
	assert.Equal(t, Record{Class: 2, XCenter: 0.25, YCenter: 0.5, Width: 0.1, Height: 0.2}, rec)

	for _, line := range []string{"", "1 2 3 4", "x 0.1 0.1 0.1 0.1", "1 a 0.1 0.1 0.1", "-1 0.1 0.1 0.1 0.1"} {
		_, ok := ParseRecord(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParsePrediction(t *testing.T) {
	rec, conf, ok := ParsePrediction("1 0.5 0.5 0.2 0.4 0.73")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Class)
	assert.InDelta(t, 0.73, conf, 1e-9)

	_, conf, ok = ParsePrediction("1 0.5 0.5 0.2 0.4")
	require.True(t, ok)
	assert.InDelta(t, 1.0, conf, 1e-9)

	_, _, ok = ParsePrediction("1 0.5 0.5 0.2 0.4 high")
	assert.False(t, ok)
}

func TestLabelPath(t *testing.T) {
	assert.Equal(t, filepath.Join("lbl", "page_01.txt"), LabelPath("lbl", "page_01.JPG"))
	assert.Equal(t, "page.v2", Stem(filepath.Join("x", "page.v2.png")))
	assert.False(t, strings.Contains(LabelPath("lbl", "a.png"), ".png"))
}
