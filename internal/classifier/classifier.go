package classifier

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"go-shape-recognizer/internal/canvas"
)

// Classifier labels sketches using pixel count and spatial spread.
// A Classifier holds no mutable state and is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// New creates a classifier with the default thresholds
func New() *Classifier {
	return &Classifier{thresholds: DefaultThresholds()}
}

// NewWithThresholds creates a classifier with custom thresholds
func NewWithThresholds(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{thresholds: t}, nil
}

// Thresholds returns the thresholds in use
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

var defaultClassifier = New()

// Classify labels img with the default thresholds. A nil image means no
// drawing was captured.
func Classify(img image.Image) Result {
	return defaultClassifier.Classify(img)
}

// Classify labels img. A nil image means no drawing was captured.
func (c *Classifier) Classify(img image.Image) Result {
	if canvas.IsAbsent(img) {
		return noDrawing
	}

	stats := c.measure(canvas.IntensityPlane(img))
	if stats.count == 0 {
		return noDrawing
	}

	result := Result{
		PixelCount: stats.count,
		Spread:     stats.spread,
	}

	switch {
	case stats.count < c.thresholds.MinPixels:
		result.Label = LabelVeryLittle
	case stats.spread < c.thresholds.SimpleSpreadLimit:
		result.Label = LabelSimpleShape
	default:
		result.Label = LabelComplexShape
	}
	return result
}

// drawingStats holds the two summary statistics of a canvas
type drawingStats struct {
	count  int
	spread float64
}

// measure counts drawn pixels and computes the sum of the population standard
// deviations of their x and y coordinates. Coordinates are gathered as column
// and row histograms so memory stays proportional to W+H.
func (c *Classifier) measure(plane *image.Gray) drawingStats {
	cutoff := c.thresholds.DrawnIntensityCutoff
	w, h := plane.Rect.Dx(), plane.Rect.Dy()

	colCounts := make([]float64, w)
	rowCounts := make([]float64, h)
	count := 0
	for y := 0; y < h; y++ {
		row := plane.Pix[y*plane.Stride : y*plane.Stride+w]
		for x, v := range row {
			if v < cutoff {
				colCounts[x]++
				rowCounts[y]++
				count++
			}
		}
	}
	if count == 0 {
		return drawingStats{}
	}

	return drawingStats{
		count:  count,
		spread: popStdDev(colCounts) + popStdDev(rowCounts),
	}
}

// popStdDev is the population standard deviation of the indices of counts,
// each index weighted by its count.
func popStdDev(counts []float64) float64 {
	positions := make([]float64, len(counts))
	for i := range positions {
		positions[i] = float64(i)
	}
	_, variance := stat.PopMeanVariance(positions, counts)
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}
