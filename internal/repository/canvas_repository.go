package repository

import (
	"context"
	"fmt"
	"image"

	"go-shape-recognizer/internal/storage"
	"go-shape-recognizer/pkg/validation"
)

// CanvasRepository resolves canvas references to rasters
type CanvasRepository interface {
	// FetchCanvas retrieves the canvas behind a URL
	FetchCanvas(ctx context.Context, canvasURL string) (image.Image, error)

	// ValidateCanvasURL validates if the provided URL is acceptable
	ValidateCanvasURL(canvasURL string) error
}

// BlobSource is a canvas source that serves only the URLs it owns
type BlobSource interface {
	storage.CanvasFetcher
	Owns(canvasURL string) bool
}

// remoteCanvasRepository routes blob URLs to blob storage and everything else to HTTP
type remoteCanvasRepository struct {
	http      storage.CanvasFetcher
	blobs     BlobSource
	validator *validation.URLValidator
}

// NewCanvasRepository creates a repository. blobs may be nil when blob
// storage is not configured.
func NewCanvasRepository(httpFetcher storage.CanvasFetcher, blobs BlobSource, validator *validation.URLValidator) CanvasRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &remoteCanvasRepository{
		http:      httpFetcher,
		blobs:     blobs,
		validator: validator,
	}
}

// FetchCanvas validates canvasURL and fetches it from the matching source
func (r *remoteCanvasRepository) FetchCanvas(ctx context.Context, canvasURL string) (image.Image, error) {
	if err := r.ValidateCanvasURL(canvasURL); err != nil {
		return nil, err
	}

	if r.blobs != nil && r.blobs.Owns(canvasURL) {
		return r.blobs.FetchCanvas(ctx, canvasURL)
	}
	// Blobs in other accounts are only reachable when their container is public
	if r.http == nil {
		return nil, fmt.Errorf("%w: http source disabled", ErrSourceUnavailable)
	}
	return r.http.FetchCanvas(ctx, canvasURL)
}

// ValidateCanvasURL validates if the provided URL is acceptable
func (r *remoteCanvasRepository) ValidateCanvasURL(canvasURL string) error {
	if err := r.validator.ValidateCanvasURL(canvasURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCanvasURL, err)
	}
	return nil
}
