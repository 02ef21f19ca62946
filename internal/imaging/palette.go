package imaging

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteEntry names one category and its drawing color ("#RRGGBB").
type PaletteEntry struct {
	ID    int
	Name  string
	Color string
}

// Palette maps category ids to display names and colors.
type Palette struct {
	names  map[int]string
	colors map[int]color.RGBA
}

// NewPalette parses entries into a Palette. An entry with an empty color gets
// the generated color for its id.
func NewPalette(entries []PaletteEntry) (*Palette, error) {
	p := &Palette{
		names:  make(map[int]string, len(entries)),
		colors: make(map[int]color.RGBA, len(entries)),
	}
	for _, e := range entries {
		p.names[e.ID] = e.Name
		if e.Color == "" {
			continue
		}
		c, err := colorful.Hex(e.Color)
		if err != nil {
			return nil, fmt.Errorf("category %d: invalid color %q: %w", e.ID, e.Color, err)
		}
		r, g, b := c.RGB255()
		p.colors[e.ID] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p, nil
}

// Name returns the category name, or the decimal id for unknown categories.
func (p *Palette) Name(class int) string {
	if name, ok := p.names[class]; ok {
		return name
	}
	return strconv.Itoa(class)
}

// Color returns the category color. Categories without a configured color get
// a saturated hue derived from the id, so the same id always draws the same.
func (p *Palette) Color(class int) color.RGBA {
	if c, ok := p.colors[class]; ok {
		return c
	}
	hue := float64(((class*67)%360 + 360) % 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
