package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/manga-bubble-detector/internal/detection"
)

// CropResult contains a cropped region encoded for transport.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts the region (x1,y1)-(x2,y2) from img, optionally rescales it,
// and returns it as base64 PNG.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := scaled(imaging.Crop(img, image.Rect(x1, y1, x2, y2)), scale)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// DetectionRect converts a detection to an integer rectangle grown by pad
// pixels on every side and clipped to bounds. The result may be empty when
// the detection lies outside the image.
func DetectionRect(d detection.Detection, pad int, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(int(d.X), int(d.Y), int(d.X+d.Width), int(d.Y+d.Height))
	return r.Inset(-pad).Intersect(bounds)
}

// CropDetection returns the region of one detection as base64 PNG.
func CropDetection(img image.Image, d detection.Detection, pad int, scale float64) (*CropResult, error) {
	r := DetectionRect(d, pad, img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("detection at (%.0f,%.0f) %.0fx%.0f lies outside the image", d.X, d.Y, d.Width, d.Height)
	}
	return Crop(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, scale)
}

func scaled(img *image.NRGBA, scale float64) *image.NRGBA {
	if scale == 1.0 || scale <= 0 {
		return img
	}
	w := int(float64(img.Bounds().Dx()) * scale)
	h := int(float64(img.Bounds().Dy()) * scale)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
