package detection

// Box is an axis-aligned bounding box in corner form, in pixels.
type Box struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge
}

// Width is X2 - X1.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height is Y2 - Y1.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// AspectRatio is width divided by height, or 0 when the height is 0.
func (b Box) AspectRatio() float64 {
	h := b.Height()
	if h == 0 {
		return 0
	}
	return b.Width() / h
}

// RawDetection is one box as produced by the detector.
type RawDetection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Class      int     `json:"class"`
}

// ImageResult holds the raw detections for one image.
type ImageResult struct {
	Path       string         `json:"path"`
	Detections []RawDetection `json:"detections"`
}

// Detection is a cleaned detection: top-left corner plus size.
type Detection struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Class      int     `json:"class"`
}
