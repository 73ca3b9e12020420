package classifier

// Label is the human readable verdict shown to the user
type Label string

const (
	LabelNoDrawing    Label = "No drawing detected"
	LabelVeryLittle   Label = "Very little drawing detected"
	LabelSimpleShape  Label = "Likely Simple Shape"
	LabelComplexShape Label = "Likely Complex Shape"
)

// Shape is the machine comparable category behind a Label
type Shape string

const (
	ShapeNone    Shape = "none"
	ShapeSimple  Shape = "simple"
	ShapeComplex Shape = "complex"
)

// Shape maps the label to its category. Both "no drawing" and "very little"
// carry no shape.
func (l Label) Shape() Shape {
	switch l {
	case LabelSimpleShape:
		return ShapeSimple
	case LabelComplexShape:
		return ShapeComplex
	default:
		return ShapeNone
	}
}

// Result is the outcome of classifying a single canvas
type Result struct {
	Label      Label   `json:"label"`
	PixelCount int     `json:"pixel_count"`
	Spread     float64 `json:"spread"`
}

// Shape returns the category of the result label
func (r Result) Shape() Shape {
	return r.Label.Shape()
}

// noDrawing is returned for absent or blank canvases
var noDrawing = Result{Label: LabelNoDrawing}
