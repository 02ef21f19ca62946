package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/manga-bubble-detector/internal/detection"
)

// labelOffset is how far above the box the label baseline sits.
const labelOffset = 10

// Renderer draws cleaned detections onto page images for visual review.
type Renderer struct {
	Palette *Palette
	// Thickness is the box outline width in pixels.
	Thickness int
}

// NewRenderer returns a Renderer with 2-pixel outlines.
func NewRenderer(p *Palette) *Renderer {
	return &Renderer{Palette: p, Thickness: 2}
}

// Render draws dets onto the image at imagePath and writes the result to
// outputPath, encoded according to its extension. Unlike the dataset stages,
// an image that cannot be decoded is an error: there is nothing to draw on.
func (r *Renderer) Render(imagePath string, dets []detection.Detection, outputPath string) error {
	src, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("could not read image at %s: %w", imagePath, err)
	}

	if err := imaging.Save(r.Draw(src, dets), outputPath, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	return nil
}

// Draw returns a copy of src with each detection outlined and labeled
// "<category> <confidence>" in the category color.
func (r *Renderer) Draw(src image.Image, dets []detection.Detection) *image.RGBA {
	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Src)

	thickness := r.Thickness
	if thickness < 1 {
		thickness = 1
	}

	for _, d := range dets {
		x, y := int(d.X), int(d.Y)
		w, h := int(d.Width), int(d.Height)
		c := r.Palette.Color(d.Class)

		drawRect(canvas, x, y, x+w, y+h, thickness, c)
		drawText(canvas, x, y-labelOffset, fmt.Sprintf("%s %.2f", r.Palette.Name(d.Class), d.Confidence), c)
	}
	return canvas
}

// drawRect outlines the inclusive rectangle (x1,y1)-(x2,y2), growing the
// outline inward by thickness. Parts outside the canvas are clipped.
func drawRect(dst *image.RGBA, x1, y1, x2, y2, thickness int, c color.RGBA) {
	src := image.NewUniform(c)
	for t := 0; t < thickness; t++ {
		top, bottom := y1+t, y2-t
		left, right := x1+t, x2-t
		if top > bottom || left > right {
			break
		}
		draw.Draw(dst, image.Rect(left, top, right+1, top+1), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(left, bottom, right+1, bottom+1), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(left, top, left+1, bottom+1), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(right, top, right+1, bottom+1), src, image.Point{}, draw.Src)
	}
}

// drawText writes text with its baseline starting at (x, y).
func drawText(dst *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
