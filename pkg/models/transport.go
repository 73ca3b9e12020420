package models

import (
	"go-shape-recognizer/internal/classifier"
	"go-shape-recognizer/internal/feedback"
)

// RecognitionRequest asks for one canvas to be classified. At most one of
// Image and URL may be set; with neither, the canvas counts as empty.
type RecognitionRequest struct {
	Image         string `json:"image,omitempty"` // data:image/...;base64,...
	URL           string `json:"url,omitempty" binding:"omitempty,url"`
	Task          string `json:"task,omitempty"`
	ChallengeMode bool   `json:"challenge_mode,omitempty"`
}

// BatchRecognitionRequest classifies several independent canvases
type BatchRecognitionRequest struct {
	Items []RecognitionRequest `json:"items" binding:"required,min=1,dive"`
}

// CanvasInfo describes the raster that was classified
type CanvasInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
}

// RecognitionResponse is the result of classifying one canvas
type RecognitionResponse struct {
	ID                string                `json:"id"`
	Timestamp         string                `json:"timestamp"`
	ProcessingTimeSec float64               `json:"processing_time_sec"`
	Source            string                `json:"source"`
	Canvas            *CanvasInfo           `json:"canvas,omitempty"`
	Label             classifier.Label      `json:"label"`
	Shape             classifier.Shape      `json:"shape"`
	PixelCount        int                   `json:"pixel_count"`
	Spread            float64               `json:"spread"`
	Confidence        classifier.Confidence `json:"confidence"`
	Feedback          *feedback.Feedback    `json:"feedback,omitempty"`
}

// BatchItemResult holds either a response or an error for one batch item
type BatchItemResult struct {
	Index    int                  `json:"index"`
	Response *RecognitionResponse `json:"response,omitempty"`
	Error    *ErrorResponse       `json:"error,omitempty"`
}

// BatchRecognitionResponse lists item results in request order
type BatchRecognitionResponse struct {
	Results   []BatchItemResult `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// TaskInfo describes a selectable drawing task
type TaskInfo struct {
	ID    feedback.Task `json:"id"`
	Title string        `json:"title"`
	Hint  string        `json:"hint"`
}

// CanvasSettingsResponse tells clients how to set up the drawing surface
type CanvasSettingsResponse struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	MaxWidth   int                   `json:"max_width"`
	MaxHeight  int                   `json:"max_height"`
	Tasks      []TaskInfo            `json:"tasks"`
	Thresholds classifier.Thresholds `json:"thresholds"`
	Note       string                `json:"note"`
}
