package feedback

import (
	"fmt"
	"strings"

	"go-shape-recognizer/internal/classifier"
)

// Task is the shape the user set out to draw
type Task string

const (
	TaskSimple  Task = "simple"
	TaskComplex Task = "complex"
)

// Tasks lists the selectable tasks in display order
var Tasks = []Task{TaskSimple, TaskComplex}

// ParseTask accepts "simple", "Simple Shape", "COMPLEX" and similar spellings
func ParseTask(s string) (Task, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimSuffix(normalized, " shape")
	switch Task(normalized) {
	case TaskSimple:
		return TaskSimple, nil
	case TaskComplex:
		return TaskComplex, nil
	}
	return "", fmt.Errorf("unknown task %q (expected simple or complex)", s)
}

// Shape is the classifier category that satisfies the task
func (t Task) Shape() classifier.Shape {
	if t == TaskComplex {
		return classifier.ShapeComplex
	}
	return classifier.ShapeSimple
}

// Title is the display name of the task
func (t Task) Title() string {
	if t == TaskComplex {
		return "Complex Shape"
	}
	return "Simple Shape"
}

// Hint is the drawing advice shown while the task is selected
func (t Task) Hint() string {
	if t == TaskComplex {
		return "Use crossings, sharp turns, or spread-out strokes."
	}
	return "Use smooth lines and keep the drawing compact."
}

// Outcome describes how the prediction relates to the task
type Outcome string

const (
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
	OutcomeTricked  Outcome = "tricked"
)

// Note is shown with every analysis
const Note = "This recogniser uses simple rules (pixel density and spread). " +
	"It does not truly understand shapes like humans do."

// ReflectionPrompts are offered after an analysis
var ReflectionPrompts = []string{
	"Did the recogniser interpret your drawing as you expected?",
	"Which features do you think influenced the decision?",
	"What information is missing that humans usually rely on?",
}

// Feedback is the host-side interpretation of a classification
type Feedback struct {
	Task    Task     `json:"task"`
	Hint    string   `json:"hint"`
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message"`
	Note    string   `json:"note"`
	Reflect []string `json:"reflect"`
}

// Evaluate compares the predicted shape against the task. In challenge mode a
// mismatch counts as having tricked the recogniser.
func Evaluate(task Task, result classifier.Result, challengeMode bool) Feedback {
	fb := Feedback{
		Task:    task,
		Hint:    task.Hint(),
		Note:    Note,
		Reflect: ReflectionPrompts,
	}

	switch {
	case result.Shape() == task.Shape():
		fb.Outcome = OutcomeMatch
		fb.Message = "The recogniser identifies your drawing as the selected shape."
	case challengeMode:
		fb.Outcome = OutcomeTricked
		fb.Message = "You tricked the recogniser! This shows the limitations of rule-based systems."
	default:
		fb.Outcome = OutcomeMismatch
		fb.Message = "The recogniser's interpretation does not match your intended shape. " +
			"This shows how simple rule-based systems can misinterpret drawings."
	}
	return fb
}
