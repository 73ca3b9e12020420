package transport

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-shape-recognizer/internal/config"
	apperrors "go-shape-recognizer/internal/errors"
	"go-shape-recognizer/internal/feedback"
	"go-shape-recognizer/internal/logger"
	"go-shape-recognizer/internal/observer"
	"go-shape-recognizer/internal/service"
	"go-shape-recognizer/pkg/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	// statusClientClosedRequest is reported when the client goes away mid-request
	statusClientClosedRequest = 499
)

// StatsProvider exposes recognition counters
type StatsProvider interface {
	Stats() observer.Stats
}

func NewHandler(svc service.RecognitionService, stats StatsProvider, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestID(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/canvas", canvasSettings(svc))
	r.POST("/classify", classify(svc, cfg))
	r.POST("/classify/batch", classifyBatch(svc, cfg))
	r.GET("/stats", recognitionStats(stats))

	return r
}

// classify accepts either a JSON body with a data URL or canvas URL, or a
// multipart form whose "image" field holds the encoded canvas
func classify(svc service.RecognitionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		id := c.GetString(requestIDKey)
		logger.WithFields(logrus.Fields{
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"content_type": c.ContentType(),
			"request_id":   id,
			"ip":           c.ClientIP(),
		}).Info("Processing classification request")

		var (
			resp *models.RecognitionResponse
			err  error
		)
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			resp, err = classifyUpload(ctx, c, svc, id)
		} else {
			var req models.RecognitionRequest
			if bindErr := c.ShouldBindJSON(&req); bindErr != nil && !errors.Is(bindErr, io.EOF) {
				respondError(c, "invalid request format", bindError(bindErr))
				return
			}
			resp, err = svc.RecognizeRequest(ctx, req, id)
		}
		if err != nil {
			respondError(c, "classification failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id":         id,
			"source":             resp.Source,
			"label":              resp.Label,
			"pixel_count":        resp.PixelCount,
			"spread":             resp.Spread,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Classification completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func classifyUpload(ctx context.Context, c *gin.Context, svc service.RecognitionService, id string) (*models.RecognitionResponse, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, bindError(err)
	}

	opts := service.Options{RequestID: id}
	if task := formValue(form, "task"); task != "" {
		parsed, err := feedback.ParseTask(task)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid task", err)
		}
		opts.Task = parsed
	}
	if challenge := formValue(form, "challenge_mode"); challenge != "" {
		enabled, err := strconv.ParseBool(challenge)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid challenge_mode", err)
		}
		opts.ChallengeMode = enabled
	}

	files := form.File["image"]
	if len(files) == 0 {
		return svc.RecognizeUpload(ctx, nil, opts)
	}

	f, err := files[0].Open()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read upload", err)
	}
	return svc.RecognizeUpload(ctx, data, opts)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func classifyBatch(svc service.RecognitionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.BatchRecognitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, "invalid request format", bindError(err))
			return
		}

		resp, err := svc.RecognizeBatch(ctx, req.Items, c.GetString(requestIDKey))
		if err != nil {
			respondError(c, "batch classification failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"items":      len(req.Items),
			"succeeded":  resp.Succeeded,
			"failed":     resp.Failed,
		}).Info("Batch classification completed")

		c.JSON(http.StatusOK, resp)
	}
}

func canvasSettings(svc service.RecognitionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Settings())
	}
}

func recognitionStats(stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Stats())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, "request processing failed", c.Errors.Last().Err)
		}
	}
}

// bindError maps request decoding failures to application errors
func bindError(err error) *apperrors.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.NewTooLargeError("request body too large", err)
	}
	return apperrors.NewValidationError("malformed request body", err)
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func statusText(code int) string {
	if code == statusClientClosedRequest {
		return "Client Closed Request"
	}
	return http.StatusText(code)
}

func respondError(c *gin.Context, message string, err error) {
	code := determineStatusCode(err)

	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"request_id":  c.GetString(requestIDKey),
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:     statusText(code),
		Message:   message + ": " + err.Error(),
		RequestID: c.GetString(requestIDKey),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Type = string(appErr.Type)
	}
	c.AbortWithStatusJSON(code, resp)
}
