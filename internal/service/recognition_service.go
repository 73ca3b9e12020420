package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-shape-recognizer/internal/canvas"
	"go-shape-recognizer/internal/classifier"
	apperrors "go-shape-recognizer/internal/errors"
	"go-shape-recognizer/internal/feedback"
	"go-shape-recognizer/internal/observer"
	"go-shape-recognizer/internal/repository"
	"go-shape-recognizer/internal/storage"
	"go-shape-recognizer/pkg/models"
	"go-shape-recognizer/pkg/validation"
)

// Canvas sources reported in responses and events
const (
	SourceRaster  = "raster"
	SourceUpload  = "upload"
	SourceDataURL = "data_url"
	SourceURL     = "url"
	SourceEmpty   = "empty"
)

// Options carry the host-side context of a recognition
type Options struct {
	// Task is the shape the user meant to draw; empty skips feedback
	Task          feedback.Task
	ChallengeMode bool
	RequestID     string
}

// RecognitionService classifies canvases from any supported source
type RecognitionService interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (*models.RecognitionResponse, error)
	RecognizeUpload(ctx context.Context, data []byte, opts Options) (*models.RecognitionResponse, error)
	RecognizeDataURL(ctx context.Context, dataURL string, opts Options) (*models.RecognitionResponse, error)
	RecognizeURL(ctx context.Context, canvasURL string, opts Options) (*models.RecognitionResponse, error)
	RecognizeRequest(ctx context.Context, req models.RecognitionRequest, requestID string) (*models.RecognitionResponse, error)
	RecognizeBatch(ctx context.Context, items []models.RecognitionRequest, requestID string) (*models.BatchRecognitionResponse, error)
	Settings() models.CanvasSettingsResponse
}

// Config bounds the work a single call may do
type Config struct {
	CanvasWidth      int
	CanvasHeight     int
	MaxBatchSize     int
	BatchConcurrency int
}

type recognitionService struct {
	repo       repository.CanvasRepository
	classifier *classifier.Classifier
	validator  *validation.CanvasValidator
	decoder    canvas.Decoder
	events     observer.Subject
	cfg        Config
}

// NewRecognitionService creates a recognition service. events may be nil.
func NewRecognitionService(
	repo repository.CanvasRepository,
	c *classifier.Classifier,
	validator *validation.CanvasValidator,
	events observer.Subject,
	cfg Config,
) RecognitionService {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 32
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		cfg.CanvasWidth, cfg.CanvasHeight = canvas.DefaultWidth, canvas.DefaultHeight
	}
	if events == nil {
		events = observer.NewEventPublisher()
	}
	limits := validator.Limits()
	return &recognitionService{
		repo:       repo,
		classifier: c,
		validator:  validator,
		decoder:    canvas.Decoder{MaxWidth: limits.MaxWidth, MaxHeight: limits.MaxHeight},
		events:     events,
		cfg:        cfg,
	}
}

// Recognize classifies an already decoded raster. A nil image is an empty canvas.
func (s *recognitionService) Recognize(ctx context.Context, img image.Image, opts Options) (*models.RecognitionResponse, error) {
	source := SourceRaster
	if canvas.IsAbsent(img) {
		source = SourceEmpty
	}
	return s.recognize(ctx, img, "", source, opts)
}

// RecognizeUpload decodes raw image bytes and classifies them
func (s *recognitionService) RecognizeUpload(ctx context.Context, data []byte, opts Options) (*models.RecognitionResponse, error) {
	img, format, err := s.decoder.Decode(data)
	if err != nil {
		return nil, s.fail(ctx, SourceUpload, opts, decodeError("invalid canvas image", err))
	}
	return s.recognize(ctx, img, format, SourceUpload, opts)
}

// RecognizeDataURL decodes a canvas data URL and classifies it
func (s *recognitionService) RecognizeDataURL(ctx context.Context, dataURL string, opts Options) (*models.RecognitionResponse, error) {
	img, format, err := s.decoder.DecodeDataURL(dataURL)
	if err != nil {
		return nil, s.fail(ctx, SourceDataURL, opts, decodeError("invalid canvas data URL", err))
	}
	return s.recognize(ctx, img, format, SourceDataURL, opts)
}

// RecognizeURL fetches a remote canvas and classifies it
func (s *recognitionService) RecognizeURL(ctx context.Context, canvasURL string, opts Options) (*models.RecognitionResponse, error) {
	start := time.Now()
	img, err := s.repo.FetchCanvas(ctx, canvasURL)
	if err != nil {
		appErr := classifyFetchError(err)
		s.events.NotifyObservers(ctx, observer.RecognitionEvent{
			EventType:      observer.CanvasFetchFailed,
			RequestID:      opts.RequestID,
			Source:         SourceURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   appErr.Error(),
			Metadata:       map[string]interface{}{"url": canvasURL},
		})
		return nil, s.fail(ctx, SourceURL, opts, appErr)
	}

	s.events.NotifyObservers(ctx, observer.RecognitionEvent{
		EventType:      observer.CanvasFetched,
		RequestID:      opts.RequestID,
		Source:         SourceURL,
		ProcessingTime: time.Since(start),
		Metadata:       map[string]interface{}{"url": canvasURL},
	})
	return s.recognize(ctx, img, "", SourceURL, opts)
}

// RecognizeRequest dispatches a transport request to the matching source
func (s *recognitionService) RecognizeRequest(ctx context.Context, req models.RecognitionRequest, requestID string) (*models.RecognitionResponse, error) {
	opts := Options{ChallengeMode: req.ChallengeMode, RequestID: requestID}
	if req.Task != "" {
		task, err := feedback.ParseTask(req.Task)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid task", err)
		}
		opts.Task = task
	}

	switch {
	case req.Image != "" && req.URL != "":
		return nil, apperrors.NewValidationError("provide either image or url, not both", nil)
	case req.Image != "":
		return s.RecognizeDataURL(ctx, req.Image, opts)
	case req.URL != "":
		return s.RecognizeURL(ctx, req.URL, opts)
	default:
		return s.Recognize(ctx, nil, opts)
	}
}

// RecognizeBatch classifies independent requests concurrently. Item failures
// are reported per item and never abort the rest of the batch.
func (s *recognitionService) RecognizeBatch(ctx context.Context, items []models.RecognitionRequest, requestID string) (*models.BatchRecognitionResponse, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one item", nil)
	}
	if len(items) > s.cfg.MaxBatchSize {
		return nil, apperrors.NewTooLargeError(
			fmt.Sprintf("batch of %d items exceeds the limit of %d", len(items), s.cfg.MaxBatchSize), nil)
	}

	results := make([]models.BatchItemResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i].Index = i
			resp, err := s.RecognizeRequest(gctx, item, requestID)
			if err != nil {
				results[i].Error = &models.ErrorResponse{
					Error:     http.StatusText(apperrors.GetStatusCode(err)),
					Type:      string(errorType(err)),
					Message:   err.Error(),
					RequestID: requestID,
				}
				return nil
			}
			results[i].Response = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("batch recognition failed", err)
	}

	resp := &models.BatchRecognitionResponse{Results: results}
	for _, r := range results {
		if r.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return resp, nil
}

// Settings describes the drawing surface and the rules in force
func (s *recognitionService) Settings() models.CanvasSettingsResponse {
	limits := s.validator.Limits()
	tasks := make([]models.TaskInfo, 0, len(feedback.Tasks))
	for _, t := range feedback.Tasks {
		tasks = append(tasks, models.TaskInfo{ID: t, Title: t.Title(), Hint: t.Hint()})
	}
	return models.CanvasSettingsResponse{
		Width:      s.cfg.CanvasWidth,
		Height:     s.cfg.CanvasHeight,
		MaxWidth:   limits.MaxWidth,
		MaxHeight:  limits.MaxHeight,
		Tasks:      tasks,
		Thresholds: s.classifier.Thresholds(),
		Note:       feedback.Note,
	}
}

func (s *recognitionService) recognize(ctx context.Context, img image.Image, format, source string, opts Options) (*models.RecognitionResponse, error) {
	start := time.Now()
	s.events.NotifyObservers(ctx, observer.RecognitionEvent{
		EventType: observer.RecognitionStarted,
		RequestID: opts.RequestID,
		Source:    source,
	})

	if err := s.validator.ValidateCanvas(img); err != nil {
		return nil, s.fail(ctx, source, opts, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.fail(ctx, source, opts, apperrors.NewTimeoutError("recognition cancelled", err))
	}

	result := s.classifier.Classify(img)

	resp := &models.RecognitionResponse{
		ID:         uuid.NewString(),
		Timestamp:  start.UTC().Format(time.RFC3339),
		Source:     source,
		Label:      result.Label,
		Shape:      result.Shape(),
		PixelCount: result.PixelCount,
		Spread:     result.Spread,
		Confidence: s.classifier.Confidence(result),
	}
	if !canvas.IsAbsent(img) {
		bounds := img.Bounds()
		resp.Canvas = &models.CanvasInfo{Width: bounds.Dx(), Height: bounds.Dy(), Format: format}
	}
	if opts.Task != "" {
		fb := feedback.Evaluate(opts.Task, result, opts.ChallengeMode)
		resp.Feedback = &fb
	}
	resp.ProcessingTimeSec = time.Since(start).Seconds()

	s.events.NotifyObservers(ctx, observer.RecognitionEvent{
		EventType:      observer.RecognitionCompleted,
		RequestID:      opts.RequestID,
		Source:         source,
		ProcessingTime: time.Since(start),
		Label:          string(result.Label),
		Metadata: map[string]interface{}{
			"pixel_count": result.PixelCount,
			"spread":      result.Spread,
		},
	})
	return resp, nil
}

// fail publishes a failure event and returns err unchanged
func (s *recognitionService) fail(ctx context.Context, source string, opts Options, err error) error {
	s.events.NotifyObservers(ctx, observer.RecognitionEvent{
		EventType:    observer.RecognitionFailed,
		RequestID:    opts.RequestID,
		Source:       source,
		ErrorMessage: err.Error(),
	})
	return err
}

func classifyFetchError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("canvas fetch timeout", err)
	case errors.Is(err, canvas.ErrCanvasTooLarge):
		return apperrors.NewTooLargeError("fetched canvas is too large", err)
	case errors.Is(err, storage.ErrCanvasNotFound):
		return apperrors.NewNotFoundError("canvas not found", err)
	case errors.Is(err, canvas.ErrMalformedImage):
		return apperrors.NewProcessingError("fetched canvas is not a valid image", err)
	default:
		return apperrors.NewNetworkError("failed to fetch canvas", err)
	}
}

// decodeError maps a decoding failure of client-supplied bytes
func decodeError(message string, err error) *apperrors.AppError {
	if errors.Is(err, canvas.ErrCanvasTooLarge) {
		return apperrors.NewTooLargeError(message, err)
	}
	return apperrors.NewValidationError(message, err)
}

func errorType(err error) apperrors.ErrorType {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return apperrors.ErrorTypeInternal
}
