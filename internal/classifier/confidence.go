package classifier

import "math"

// Confidence is a display-only score derived from a Result. It plays no part
// in choosing the label.
type Confidence struct {
	Score   float64 `json:"score"`
	Percent int     `json:"percent"`
}

// Confidence scores r using the classifier's normalisers
func (c *Classifier) Confidence(r Result) Confidence {
	t := c.thresholds
	score := (float64(r.PixelCount)/t.ConfidencePixelScale + r.Spread/t.ConfidenceSpreadScale) / 2
	score = math.Min(score, 1.0)
	return Confidence{
		Score:   score,
		Percent: int(score * 100),
	}
}
