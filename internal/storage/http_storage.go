package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"go-shape-recognizer/internal/canvas"
)

// CanvasFetcher retrieves a drawn canvas from a remote location
type CanvasFetcher interface {
	FetchCanvas(ctx context.Context, canvasURL string) (image.Image, error)
}

// ErrCanvasNotFound indicates the remote source has no canvas at the given location
var ErrCanvasNotFound = errors.New("canvas not found")

const (
	defaultMaxCanvasBytes = 10 * 1024 * 1024
	maxAttempts           = 3
)

// HTTPCanvasFetcher downloads canvases over HTTP with bounded retries
type HTTPCanvasFetcher struct {
	client  *http.Client
	decoder canvas.Decoder
	backoff time.Duration
}

// HTTPOption customises an HTTPCanvasFetcher
type HTTPOption func(*HTTPCanvasFetcher)

// WithTimeout sets the overall client timeout per attempt
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(f *HTTPCanvasFetcher) {
		f.client.Timeout = timeout
	}
}

// WithMaxBytes limits the size of a downloaded canvas
func WithMaxBytes(n int64) HTTPOption {
	return func(f *HTTPCanvasFetcher) {
		f.decoder.MaxBytes = n
	}
}

// WithMaxDimensions rejects canvases declaring a larger size before decoding them
func WithMaxDimensions(width, height int) HTTPOption {
	return func(f *HTTPCanvasFetcher) {
		f.decoder.MaxWidth = width
		f.decoder.MaxHeight = height
	}
}

// WithBackoff sets the base delay between attempts; attempt n waits n*backoff
func WithBackoff(d time.Duration) HTTPOption {
	return func(f *HTTPCanvasFetcher) {
		f.backoff = d
	}
}

// NewHTTPCanvasFetcher creates an HTTP canvas fetcher
func NewHTTPCanvasFetcher(opts ...HTTPOption) *HTTPCanvasFetcher {
	transport := &http.Transport{
		// Canvases come from a handful of hosts
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	f := &HTTPCanvasFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		decoder: canvas.Decoder{MaxBytes: defaultMaxCanvasBytes},
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchCanvas downloads and decodes the canvas at canvasURL. Network errors
// and 5xx responses are retried; 4xx responses are not.
func (h *HTTPCanvasFetcher) FetchCanvas(ctx context.Context, canvasURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canvasURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, image/bmp, */*")
	req.Header.Set("User-Agent", "Go-Shape-Recognizer/1.0")

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("canvas fetch cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		img, retry, err := h.attempt(req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch canvas after %d attempts: %w", maxAttempts, lastErr)
}

// attempt performs a single request. retry reports whether a failure is transient.
func (h *HTTPCanvasFetcher) attempt(req *http.Request) (img image.Image, retry bool, err error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, req.Context().Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("client error: status code %d: %w", resp.StatusCode, ErrCanvasNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	img, _, err = h.decoder.DecodeReader(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode canvas: %w", err)
	}
	if img == nil {
		return nil, false, fmt.Errorf("failed to decode canvas: empty body")
	}
	return img, false, nil
}
