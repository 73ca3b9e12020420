package classifier

import "testing"

func TestConfidence(t *testing.T) {
	c := New()

	tests := []struct {
		name            string
		result          Result
		expectedScore   float64
		expectedPercent int
	}{
		{"no drawing", Result{Label: LabelNoDrawing}, 0, 0},
		{"pixels only", Result{Label: LabelSimpleShape, PixelCount: 4000}, 0.25, 25},
		{"spread only", Result{Label: LabelSimpleShape, PixelCount: 0, Spread: 100}, 0.25, 25},
		{"both at scale", Result{Label: LabelComplexShape, PixelCount: 8000, Spread: 200}, 1.0, 100},
		{"capped", Result{Label: LabelComplexShape, PixelCount: 20000, Spread: 400}, 1.0, 100},
		{"truncated percent", Result{Label: LabelSimpleShape, PixelCount: 1000, Spread: 50}, 0.1875, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Confidence(tt.result)
			if got.Score != tt.expectedScore {
				t.Errorf("Expected score %f, got %f", tt.expectedScore, got.Score)
			}
			if got.Percent != tt.expectedPercent {
				t.Errorf("Expected percent %d, got %d", tt.expectedPercent, got.Percent)
			}
		})
	}
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()

	if th.DrawnIntensityCutoff != 250 {
		t.Errorf("Expected DrawnIntensityCutoff to be 250, got %d", th.DrawnIntensityCutoff)
	}
	if th.MinPixels != 500 {
		t.Errorf("Expected MinPixels to be 500, got %d", th.MinPixels)
	}
	if th.SimpleSpreadLimit != 120.0 {
		t.Errorf("Expected SimpleSpreadLimit to be 120.0, got %f", th.SimpleSpreadLimit)
	}
	if th.ConfidencePixelScale != 8000.0 || th.ConfidenceSpreadScale != 200.0 {
		t.Errorf("Expected confidence scales 8000/200, got %f/%f", th.ConfidencePixelScale, th.ConfidenceSpreadScale)
	}
	if err := th.Validate(); err != nil {
		t.Errorf("Expected default thresholds to be valid, got %v", err)
	}
}

func TestLabelShape(t *testing.T) {
	tests := map[Label]Shape{
		LabelNoDrawing:    ShapeNone,
		LabelVeryLittle:   ShapeNone,
		LabelSimpleShape:  ShapeSimple,
		LabelComplexShape: ShapeComplex,
	}
	for label, expected := range tests {
		if got := label.Shape(); got != expected {
			t.Errorf("Expected %q to map to %q, got %q", label, expected, got)
		}
	}
}
