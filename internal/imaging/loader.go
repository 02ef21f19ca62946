package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The MCP server keeps one cache for the lifetime of a session so repeated
// tool calls on the same page do not decode it again. Cached images stay in
// memory until Evict or Clear; the sanitizer evicts a path after rewriting it.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, decoding it from disk on a miss.
//
// Decoding goes through imaging.Open, which applies EXIF orientation so that
// pixel coordinates match what the detector saw. Different spellings of the
// same path are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Dimensions returns the size in pixels of the image as displayed, i.e.
// after its EXIF orientation is applied, matching what Load returns.
func Dimensions(path string) (width, height int, err error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// ImageInfo describes an image file as the sanitizer sees it.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg" or "unknown", from the file extension.
	Format string `json:"format"`

	// ColorModel names the decoded color model: "rgb", "rgba", "gray",
	// "gray+alpha", "palette", "ycbcr", "cmyk" or "other".
	ColorModel string `json:"color_model"`

	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// NeedsSanitize is true when the image is not already opaque 8-bit RGB.
	NeedsSanitize bool `json:"needs_sanitize"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through cache and reports its color layout.
//
// A palette or grayscale-with-alpha page decodes fine in Go but is exactly
// the kind of file the detector's loader mishandles, so NeedsSanitize is set
// for everything except opaque RGB and YCbCr (baseline JPEG) images.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	}

	model := colorModelName(img)
	opaque := isOpaque(img)

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorModel:    model,
		HasAlpha:      !opaque,
		NeedsSanitize: !opaque || (model != "rgb" && model != "rgba" && model != "ycbcr"),
		FileSizeBytes: stat.Size(),
	}, nil
}

func colorModelName(img image.Image) string {
	switch img.(type) {
	case *image.Paletted:
		return "palette"
	case *image.Gray, *image.Gray16:
		return "gray"
	case *image.YCbCr:
		return "ycbcr"
	case *image.CMYK:
		return "cmyk"
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64:
		if isOpaque(img) {
			return "rgb"
		}
		if isGray(img) {
			return "gray+alpha"
		}
		return "rgba"
	}
	return "other"
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

func isGray(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B {
				return false
			}
		}
	}
	return true
}
