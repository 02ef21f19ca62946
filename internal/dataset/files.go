package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/labels"
)

// Partition names, also used as directory names.
const (
	Train = "train"
	Val   = "val"
)

// imageExtensions are the raster formats the dataset accepts.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether name has a supported raster extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListImages returns the raster filenames in dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Layout is the prepared dataset directory structure under Root.
type Layout struct {
	Root string
}

// ImagesDir returns the image directory for a partition.
func (l Layout) ImagesDir(partition string) string {
	return filepath.Join(l.Root, "images", partition)
}

// LabelsDir returns the label directory for a partition.
func (l Layout) LabelsDir(partition string) string {
	return filepath.Join(l.Root, "labels", partition)
}

// Ensure creates every partition directory.
func (l Layout) Ensure() error {
	for _, p := range []string{Train, Val} {
		for _, dir := range []string{l.ImagesDir(p), l.LabelsDir(p)} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
	}
	return nil
}

// CopyPairs copies each image in files and its sibling label file into the
// destination directories. Files whose image or label is missing are skipped
// without error, so no orphan is ever copied. Bytes are copied verbatim.
// It returns the number of pairs copied.
func CopyPairs(files []string, imgSrc, lblSrc, imgDst, lblDst string, log *zap.Logger) (int, error) {
	copied := 0
	for _, name := range files {
		imgPath := filepath.Join(imgSrc, name)
		lblPath := labels.LabelPath(lblSrc, name)

		if !isFile(imgPath) || !isFile(lblPath) {
			log.Debug("skipping unpaired file", zap.String("file", name))
			continue
		}

		if err := copyFile(imgPath, filepath.Join(imgDst, name)); err != nil {
			return copied, err
		}
		if err := copyFile(lblPath, labels.LabelPath(lblDst, name)); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) error {
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
