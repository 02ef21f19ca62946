package detection

// Rules holds the thresholds and category roles of the post-processing
// heuristics.
type Rules struct {
	// Rule 1: near-square low-confidence primary boxes become Secondary.
	SquareMin     float64 `json:"square_min"`
	SquareMax     float64 `json:"square_max"`
	SquareMaxConf float64 `json:"square_max_conf"`

	// Rule 2: wide low-confidence boxes become Interface.
	WideMinRatio float64 `json:"wide_min_ratio"`
	WideMaxConf  float64 `json:"wide_max_conf"`

	Primary   int `json:"primary"`   // speech bubble
	Secondary int `json:"secondary"` // narration box
	Interface int `json:"interface"` // interface text
}

// DefaultRules returns the manga layout heuristics.
func DefaultRules() Rules {
	return Rules{
		SquareMin:     0.9,
		SquareMax:     1.1,
		SquareMaxConf: 0.9,
		WideMinRatio:  3.0,
		WideMaxConf:   0.85,
		Primary:       0,
		Secondary:     1,
		Interface:     3,
	}
}

// Apply runs both rules on d and returns the cleaned detection. Rule 2 is
// evaluated against the category left by rule 1.
func (r Rules) Apply(d RawDetection) Detection {
	ratio := d.Box.AspectRatio()
	class := d.Class

	if ratio > r.SquareMin && ratio < r.SquareMax && class == r.Primary && d.Confidence < r.SquareMaxConf {
		class = r.Secondary
	}

	if ratio > r.WideMinRatio && class != r.Interface && d.Confidence < r.WideMaxConf {
		class = r.Interface
	}

	return Detection{
		X:          d.Box.X1,
		Y:          d.Box.Y1,
		Width:      d.Box.Width(),
		Height:     d.Box.Height(),
		Confidence: d.Confidence,
		Class:      class,
	}
}

// ApplyImage cleans every detection of one image, preserving order.
func (r Rules) ApplyImage(dets []RawDetection) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		out = append(out, r.Apply(d))
	}
	return out
}

// ApplyAll cleans a batch of image results. The i-th output belongs to the
// i-th input.
func (r Rules) ApplyAll(results []ImageResult) [][]Detection {
	out := make([][]Detection, 0, len(results))
	for _, res := range results {
		out = append(out, r.ApplyImage(res.Detections))
	}
	return out
}

// Raw converts a cleaned detection back to corner form, keeping its class.
func (d Detection) Raw() RawDetection {
	return RawDetection{
		Box:        Box{X1: d.X, Y1: d.Y, X2: d.X + d.Width, Y2: d.Y + d.Height},
		Confidence: d.Confidence,
		Class:      d.Class,
	}
}
