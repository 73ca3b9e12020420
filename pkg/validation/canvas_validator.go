package validation

import (
	"fmt"
	"image"

	"go-shape-recognizer/internal/canvas"
	apperrors "go-shape-recognizer/internal/errors"
)

// CanvasLimits bounds the rasters the recogniser accepts
type CanvasLimits struct {
	MaxWidth  int
	MaxHeight int
}

// DefaultCanvasLimits allows canvases up to 4096x4096
func DefaultCanvasLimits() CanvasLimits {
	return CanvasLimits{MaxWidth: 4096, MaxHeight: 4096}
}

// CanvasValidator checks the raster precondition of the classifier
type CanvasValidator struct {
	limits CanvasLimits
}

// NewCanvasValidator creates a canvas validator with the given limits
func NewCanvasValidator(limits CanvasLimits) *CanvasValidator {
	return &CanvasValidator{limits: limits}
}

// Limits returns the limits in force
func (v *CanvasValidator) Limits() CanvasLimits {
	return v.limits
}

// ValidateCanvas rejects rasters larger than the configured limits. A nil
// image is valid: it stands for an empty drawing.
func (v *CanvasValidator) ValidateCanvas(img image.Image) error {
	if canvas.IsAbsent(img) {
		return nil
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > v.limits.MaxWidth || height > v.limits.MaxHeight {
		return apperrors.NewTooLargeError(
			fmt.Sprintf("canvas %dx%d exceeds the %dx%d limit", width, height, v.limits.MaxWidth, v.limits.MaxHeight),
			nil,
		)
	}
	return nil
}
