package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is used when a Transcriber has no language set.
const DefaultLanguage = "eng"

const (
	defaultScale    = 2.0
	contrastBoost   = 0.3
	minRegionPixels = 2
)

// Bounds is a rectangle in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Transcript is the text read from one region.
type Transcript struct {
	Bounds Bounds `json:"bounds"`
	Text   string `json:"text"`
	// Confidence is the mean word confidence in [0, 1], 0 when no words were found.
	Confidence float64 `json:"confidence"`
}

// Transcriber runs Tesseract over image regions.
type Transcriber struct {
	// Language is a Tesseract language code such as "eng" or "jpn".
	Language string
	// TessdataPrefix overrides the trained data directory when set.
	TessdataPrefix string
	// Scale is the upscale factor applied before recognition (default 2).
	Scale float64
}

// NewTranscriber returns a Transcriber for language.
func NewTranscriber(language string) *Transcriber {
	return &Transcriber{Language: language, Scale: defaultScale}
}

// TranscribeRegions reads the text in each rectangle of img. The result has
// one Transcript per rectangle, in order. Rectangles that fall outside the
// image or are too small to read yield an empty Transcript.
func (t *Transcriber) TranscribeRegions(img image.Image, regions []image.Rectangle) ([]Transcript, error) {
	out := make([]Transcript, len(regions))
	if len(regions) == 0 {
		return out, nil
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := t.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	scale := t.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	for i, r := range regions {
		r = r.Intersect(img.Bounds())
		out[i].Bounds = Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
		if r.Dx() < minRegionPixels || r.Dy() < minRegionPixels {
			continue
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, Preprocess(img, r, scale)); err != nil {
			return nil, fmt.Errorf("failed to encode region %d: %w", i, err)
		}
		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return nil, fmt.Errorf("failed to set image for region %d: %w", i, err)
		}

		text, err := client.Text()
		if err != nil {
			return nil, fmt.Errorf("OCR failed for region %d: %w", i, err)
		}
		out[i].Text = strings.TrimSpace(text)
		out[i].Confidence = meanConfidence(client)
	}
	return out, nil
}

// meanConfidence averages the word confidences of the last recognized image.
// Box extraction can fail on some Tesseract builds; that reads as 0.
func meanConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return 0
	}
	sum, n := 0.0, 0
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		sum += b.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) / 100
}

// Preprocess crops r out of img and prepares it for recognition: grayscale,
// contrast boost, and a resize by scale. The result starts at (0,0).
func Preprocess(img image.Image, r image.Rectangle, scale float64) image.Image {
	cropped := imaging.Crop(img, r)
	gray := effect.Grayscale(cropped)
	boosted := adjust.Contrast(gray, contrastBoost)

	if scale == 1 || scale <= 0 {
		return boosted
	}
	w := int(float64(r.Dx()) * scale)
	h := int(float64(r.Dy()) * scale)
	if w < 1 || h < 1 {
		return boosted
	}
	return transform.Resize(boosted, w, h, transform.Lanczos)
}
