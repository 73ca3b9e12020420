package classifier

import "fmt"

// Thresholds holds the tunable constants of the shape heuristic.
type Thresholds struct {
	// Pixels with a first-channel intensity strictly below this value count as drawn on
	DrawnIntensityCutoff uint8 `yaml:"drawn_intensity_cutoff" json:"drawn_intensity_cutoff"`

	// Drawings with fewer drawn pixels than this are reported as "very little"
	MinPixels int `yaml:"min_pixels" json:"min_pixels"`

	// Drawings whose spread is strictly below this are considered simple
	SimpleSpreadLimit float64 `yaml:"simple_spread_limit" json:"simple_spread_limit"`

	// Confidence normalisers (display only)
	ConfidencePixelScale  float64 `yaml:"confidence_pixel_scale" json:"confidence_pixel_scale"`
	ConfidenceSpreadScale float64 `yaml:"confidence_spread_scale" json:"confidence_spread_scale"`
}

// DefaultThresholds returns the thresholds the recogniser ships with
func DefaultThresholds() Thresholds {
	return Thresholds{
		DrawnIntensityCutoff:  250,
		MinPixels:             500,
		SimpleSpreadLimit:     120.0,
		ConfidencePixelScale:  8000.0,
		ConfidenceSpreadScale: 200.0,
	}
}

// WithMinPixels returns thresholds with a custom minimum pixel count
func (t Thresholds) WithMinPixels(n int) Thresholds {
	t.MinPixels = n
	return t
}

// WithSimpleSpreadLimit returns thresholds with a custom simple/complex boundary
func (t Thresholds) WithSimpleSpreadLimit(limit float64) Thresholds {
	t.SimpleSpreadLimit = limit
	return t
}

// WithDrawnIntensityCutoff returns thresholds with a custom background cutoff
func (t Thresholds) WithDrawnIntensityCutoff(cutoff uint8) Thresholds {
	t.DrawnIntensityCutoff = cutoff
	return t
}

// WithConfidenceScales returns thresholds with custom confidence normalisers
func (t Thresholds) WithConfidenceScales(pixelScale, spreadScale float64) Thresholds {
	t.ConfidencePixelScale = pixelScale
	t.ConfidenceSpreadScale = spreadScale
	return t
}

// Validate reports thresholds that would make the heuristic meaningless.
func (t Thresholds) Validate() error {
	if t.DrawnIntensityCutoff == 0 {
		return fmt.Errorf("drawn_intensity_cutoff must be > 0")
	}
	if t.MinPixels < 0 {
		return fmt.Errorf("min_pixels must be >= 0 (got %d)", t.MinPixels)
	}
	if t.SimpleSpreadLimit < 0 {
		return fmt.Errorf("simple_spread_limit must be >= 0 (got %g)", t.SimpleSpreadLimit)
	}
	if t.ConfidencePixelScale <= 0 || t.ConfidenceSpreadScale <= 0 {
		return fmt.Errorf("confidence scales must be > 0 (got pixel=%g, spread=%g)",
			t.ConfidencePixelScale, t.ConfidenceSpreadScale)
	}
	return nil
}
