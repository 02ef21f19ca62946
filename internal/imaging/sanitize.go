package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// JPEGQuality is used when a sanitized page is re-encoded as JPEG.
const JPEGQuality = 95

var rasterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Sanitize re-encodes every raster file in dir in place as opaque 8-bit RGB.
//
// Each file is decoded, flattened to three color channels (alpha dropped,
// palette and grayscale expanded) and written back in the format implied by
// its extension: PNG at best compression, JPEG at JPEGQuality. A file that
// cannot be decoded or rewritten is logged and skipped; it never stops the
// batch. The return value counts the files rewritten. Only an unreadable
// directory is reported as an error.
func Sanitize(dir string, log *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read image directory: %w", err)
	}

	fixed := 0
	for _, e := range entries {
		if e.IsDir() || !rasterExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := SanitizeFile(path); err != nil {
			log.Warn("skipping image", zap.String("path", path), zap.Error(err))
			continue
		}
		fixed++
	}

	log.Debug("sanitized images", zap.String("dir", dir), zap.Int("fixed", fixed))
	return fixed, nil
}

// SanitizeFile rewrites one image file as opaque RGB. The new bytes go to a
// temporary file in the same directory which then replaces the original, so
// a failed encode leaves the original untouched.
func SanitizeFile(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sanitize-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	err = imaging.Encode(tmp, FlattenRGB(img), format,
		imaging.JPEGQuality(JPEGQuality),
		imaging.PNGCompressionLevel(png.BestCompression))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace image: %w", err)
	}
	return nil
}

// FlattenRGB converts img to an opaque NRGBA image. Color values are kept
// and the alpha channel is discarded, matching a plain RGB conversion rather
// than compositing over a background.
func FlattenRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
