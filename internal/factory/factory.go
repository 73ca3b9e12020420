package factory

import (
	"fmt"

	"go-shape-recognizer/internal/canvas"
	"go-shape-recognizer/internal/classifier"
	"go-shape-recognizer/internal/config"
	"go-shape-recognizer/internal/storage"
)

// SourceType represents different canvas storage backends
type SourceType string

const (
	// HTTPSource fetches canvases from plain http(s) URLs
	HTTPSource SourceType = "http"
	// AzureSource reads canvases from Azure blob storage
	AzureSource SourceType = "azure"
)

// ClassifierFactory creates classifiers
type ClassifierFactory interface {
	CreateClassifier() (*classifier.Classifier, error)
}

// SourceFactory creates canvas sources
type SourceFactory interface {
	CreateSource(sourceType SourceType) (storage.CanvasFetcher, error)
}

// classifierFactory implements ClassifierFactory
type classifierFactory struct {
	thresholds classifier.Thresholds
}

// NewClassifierFactory creates a classifier factory for the given thresholds
func NewClassifierFactory(thresholds classifier.Thresholds) ClassifierFactory {
	return &classifierFactory{thresholds: thresholds}
}

// CreateClassifier creates a classifier with the configured thresholds
func (f *classifierFactory) CreateClassifier() (*classifier.Classifier, error) {
	c, err := classifier.NewWithThresholds(f.thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	return c, nil
}

// sourceFactory implements SourceFactory
type sourceFactory struct {
	cfg *config.Config
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config) SourceFactory {
	return &sourceFactory{cfg: cfg}
}

// CreateSource creates a canvas source based on the specified type
func (f *sourceFactory) CreateSource(sourceType SourceType) (storage.CanvasFetcher, error) {
	switch sourceType {
	case HTTPSource:
		return storage.NewHTTPCanvasFetcher(
			storage.WithTimeout(f.cfg.CanvasFetchTimeout),
			storage.WithMaxBytes(f.cfg.MaxRequestBodySize),
			storage.WithMaxDimensions(f.cfg.MaxCanvasWidth, f.cfg.MaxCanvasHeight),
		), nil
	case AzureSource:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage is not configured")
		}
		store, err := storage.NewAzureCanvasStore(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, canvas.Decoder{
			MaxWidth:  f.cfg.MaxCanvasWidth,
			MaxHeight: f.cfg.MaxCanvasHeight,
			MaxBytes:  f.cfg.MaxRequestBodySize,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ClassifierFactory ClassifierFactory
	SourceFactory     SourceFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		ClassifierFactory: NewClassifierFactory(cfg.Thresholds),
		SourceFactory:     NewSourceFactory(cfg),
	}
}
