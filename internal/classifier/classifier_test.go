package classifier

import (
	"image"
	"image/color"
	"math"
	"testing"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// createCanvas creates a white canvas of the given size
func createCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, white)
		}
	}
	return img
}

// drawBlock marks the first n pixels (row-major) of a w-wide block at (x0, y0)
func drawBlock(img *image.RGBA, x0, y0, w, n int, c color.Color) {
	for i := 0; i < n; i++ {
		img.Set(x0+i%w, y0+i/w, c)
	}
}

// drawGrid marks cols×rows pixels spaced dx, dy apart starting at the origin
func drawGrid(img *image.RGBA, cols, rows, dx, dy int) {
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			img.Set(i*dx, j*dy, black)
		}
	}
}

func TestClassify_NilImage(t *testing.T) {
	result := Classify(nil)

	if result != (Result{Label: LabelNoDrawing}) {
		t.Errorf("Expected empty no-drawing result, got %+v", result)
	}
}

func TestClassify_TypedNilImage(t *testing.T) {
	var img *image.RGBA

	result := Classify(img)
	if result.Label != LabelNoDrawing {
		t.Errorf("Expected %q for typed nil image, got %q", LabelNoDrawing, result.Label)
	}
}

func TestClassify_BlankCanvas(t *testing.T) {
	img := createCanvas(700, 300)

	result := Classify(img)
	if result != (Result{Label: LabelNoDrawing}) {
		t.Errorf("Expected empty no-drawing result, got %+v", result)
	}
}

func TestClassify_NearWhiteIsBackground(t *testing.T) {
	img := createCanvas(700, 300)
	drawBlock(img, 0, 0, 100, 1000, color.RGBA{250, 250, 250, 255})

	result := Classify(img)
	if result.Label != LabelNoDrawing {
		t.Errorf("Expected intensity 250 to count as background, got %q", result.Label)
	}

	drawBlock(img, 0, 0, 100, 1, color.RGBA{249, 249, 249, 255})
	result = Classify(img)
	if result.PixelCount != 1 {
		t.Errorf("Expected intensity 249 to count as drawn, got pixel count %d", result.PixelCount)
	}
}

func TestClassify_Labels(t *testing.T) {
	tests := []struct {
		name          string
		draw          func(img *image.RGBA)
		expectedLabel Label
		expectedShape Shape
		expectedCount int
	}{
		{
			name:          "499 clustered pixels",
			draw:          func(img *image.RGBA) { drawBlock(img, 300, 100, 25, 499, black) },
			expectedLabel: LabelVeryLittle,
			expectedShape: ShapeNone,
			expectedCount: 499,
		},
		{
			name:          "exactly 500 clustered pixels",
			draw:          func(img *image.RGBA) { drawBlock(img, 300, 100, 25, 500, black) },
			expectedLabel: LabelSimpleShape,
			expectedShape: ShapeSimple,
			expectedCount: 500,
		},
		{
			name:          "600 pixels in a compact block",
			draw:          func(img *image.RGBA) { drawBlock(img, 10, 10, 30, 600, black) },
			expectedLabel: LabelSimpleShape,
			expectedShape: ShapeSimple,
			expectedCount: 600,
		},
		{
			name:          "600 pixels scattered across the canvas",
			draw:          func(img *image.RGBA) { drawGrid(img, 30, 20, 23, 15) },
			expectedLabel: LabelComplexShape,
			expectedShape: ShapeComplex,
			expectedCount: 600,
		},
		{
			name:          "few scattered pixels",
			draw:          func(img *image.RGBA) { drawGrid(img, 10, 10, 60, 25) },
			expectedLabel: LabelVeryLittle,
			expectedShape: ShapeNone,
			expectedCount: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createCanvas(700, 300)
			tt.draw(img)

			result := Classify(img)
			if result.Label != tt.expectedLabel {
				t.Errorf("Expected label %q, got %q (spread %.2f)", tt.expectedLabel, result.Label, result.Spread)
			}
			if result.Shape() != tt.expectedShape {
				t.Errorf("Expected shape %q, got %q", tt.expectedShape, result.Shape())
			}
			if result.PixelCount != tt.expectedCount {
				t.Errorf("Expected pixel count %d, got %d", tt.expectedCount, result.PixelCount)
			}
		})
	}
}

func TestClassify_SpreadIsSumOfPopulationStdDev(t *testing.T) {
	img := createCanvas(700, 300)
	drawBlock(img, 10, 10, 30, 600, black)

	// 30 columns and 20 rows of a uniform grid: sqrt((n^2-1)/12) per axis
	expected := math.Sqrt((30*30-1)/12.0) + math.Sqrt((20*20-1)/12.0)

	result := Classify(img)
	if math.Abs(result.Spread-expected) > 1e-9 {
		t.Errorf("Expected spread %.6f, got %.6f", expected, result.Spread)
	}
}

func TestClassify_SpreadBoundaryIsStrict(t *testing.T) {
	img := createCanvas(700, 300)
	drawBlock(img, 10, 10, 30, 600, black)
	base := Classify(img)

	atLimit, err := NewWithThresholds(DefaultThresholds().WithSimpleSpreadLimit(base.Spread))
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}
	if got := atLimit.Classify(img).Label; got != LabelComplexShape {
		t.Errorf("Expected spread equal to the limit to be complex, got %q", got)
	}

	aboveLimit, err := NewWithThresholds(DefaultThresholds().WithSimpleSpreadLimit(math.Nextafter(base.Spread, math.Inf(1))))
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}
	if got := aboveLimit.Classify(img).Label; got != LabelSimpleShape {
		t.Errorf("Expected spread just below the limit to be simple, got %q", got)
	}
}

func TestClassify_PixelCountDoesNotRegress(t *testing.T) {
	img := createCanvas(700, 300)

	previous := ShapeNone
	for n := 480; n <= 520; n += 5 {
		drawBlock(img, 200, 100, 25, n, black)
		result := Classify(img)
		if result.PixelCount != n {
			t.Fatalf("Expected pixel count %d, got %d", n, result.PixelCount)
		}
		if previous != ShapeNone && result.Shape() == ShapeNone {
			t.Errorf("Superset of %d pixels fell back to %q", n, result.Label)
		}
		previous = result.Shape()
	}
	if previous != ShapeSimple {
		t.Errorf("Expected final shape to be simple, got %q", previous)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	img := createCanvas(700, 300)
	drawGrid(img, 30, 20, 23, 15)

	first := Classify(img)
	for i := 0; i < 5; i++ {
		if got := Classify(img); got != first {
			t.Fatalf("Expected identical results, got %+v then %+v", first, got)
		}
	}
}

func TestClassify_FirstChannelOnly(t *testing.T) {
	img := createCanvas(700, 300)
	// Pure red strokes leave the first channel at full intensity
	drawBlock(img, 10, 10, 30, 600, color.RGBA{255, 0, 0, 255})

	if got := Classify(img).Label; got != LabelNoDrawing {
		t.Errorf("Expected red strokes to be invisible, got %q", got)
	}

	// Blue strokes zero the first channel
	drawBlock(img, 10, 10, 30, 600, color.RGBA{0, 0, 255, 255})
	if got := Classify(img).Label; got != LabelSimpleShape {
		t.Errorf("Expected blue strokes to be a simple shape, got %q", got)
	}
}

func TestClassify_ImageTypesAgree(t *testing.T) {
	rgba := createCanvas(700, 300)
	drawGrid(rgba, 30, 20, 23, 15)

	gray := image.NewGray(rgba.Bounds())
	nrgba := image.NewNRGBA(rgba.Bounds())
	for y := 0; y < 300; y++ {
		for x := 0; x < 700; x++ {
			gray.Set(x, y, rgba.At(x, y))
			nrgba.Set(x, y, rgba.At(x, y))
		}
	}

	expected := Classify(rgba)
	if got := Classify(gray); got != expected {
		t.Errorf("Gray result %+v differs from RGBA result %+v", got, expected)
	}
	if got := Classify(nrgba); got != expected {
		t.Errorf("NRGBA result %+v differs from RGBA result %+v", got, expected)
	}
}

func TestClassify_OffsetBounds(t *testing.T) {
	img := createCanvas(700, 300)
	drawBlock(img, 100, 100, 30, 600, black)

	sub := img.SubImage(image.Rect(50, 50, 400, 250))

	full := Classify(img)
	cropped := Classify(sub)
	if cropped.PixelCount != full.PixelCount {
		t.Errorf("Expected pixel count %d, got %d", full.PixelCount, cropped.PixelCount)
	}
	if math.Abs(cropped.Spread-full.Spread) > 1e-9 {
		t.Errorf("Expected spread %.6f, got %.6f", full.Spread, cropped.Spread)
	}
}

func TestNewWithThresholds_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		thresholds Thresholds
	}{
		{"zero cutoff", DefaultThresholds().WithDrawnIntensityCutoff(0)},
		{"negative min pixels", DefaultThresholds().WithMinPixels(-1)},
		{"negative spread limit", DefaultThresholds().WithSimpleSpreadLimit(-5)},
		{"zero confidence scale", DefaultThresholds().WithConfidenceScales(0, 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWithThresholds(tt.thresholds); err == nil {
				t.Error("Expected error for invalid thresholds")
			}
		})
	}
}

func TestCustomMinPixels(t *testing.T) {
	img := createCanvas(700, 300)
	drawBlock(img, 10, 10, 30, 600, black)

	c, err := NewWithThresholds(DefaultThresholds().WithMinPixels(1000))
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}
	if got := c.Classify(img).Label; got != LabelVeryLittle {
		t.Errorf("Expected %q with raised minimum, got %q", LabelVeryLittle, got)
	}
}
