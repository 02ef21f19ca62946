package imaging

import (
	"image/color"
	"testing"
)

func TestNewPalette(t *testing.T) {
	p, err := NewPalette([]PaletteEntry{
		{ID: 0, Name: "bubble", Color: "#0000FF"},
		{ID: 1, Name: "narration", Color: "#ffff00"},
		{ID: 7, Name: "sfx"},
	})
	if err != nil {
		t.Fatalf("NewPalette failed: %v", err)
	}

	if got := p.Color(0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("Color(0): got %v", got)
	}
	if got := p.Color(1); got != (color.RGBA{255, 255, 0, 255}) {
		t.Errorf("Color(1): got %v", got)
	}
	if got := p.Name(1); got != "narration" {
		t.Errorf("Name(1): got %q", got)
	}
	if got := p.Name(7); got != "sfx" {
		t.Errorf("Name(7): got %q", got)
	}
	if got := p.Name(42); got != "42" {
		t.Errorf("Name(42): got %q, want \"42\"", got)
	}
}

func TestPalette_GeneratedColor(t *testing.T) {
	p, err := NewPalette(nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, class := range []int{0, 5, 42, -3} {
		c := p.Color(class)
		if c.A != 0xff {
			t.Errorf("Color(%d) not opaque: %v", class, c)
		}
		if c != p.Color(class) {
			t.Errorf("Color(%d) not stable", class)
		}
	}
	if p.Color(1) == p.Color(2) {
		t.Error("neighboring classes should get different colors")
	}
}

func TestNewPalette_InvalidColor(t *testing.T) {
	if _, err := NewPalette([]PaletteEntry{{ID: 0, Name: "bubble", Color: "blue"}}); err == nil {
		t.Error("NewPalette should reject a non-hex color")
	}
}
