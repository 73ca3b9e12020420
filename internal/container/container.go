package container

import (
	"fmt"
	"net/http"

	"go-shape-recognizer/internal/classifier"
	"go-shape-recognizer/internal/config"
	"go-shape-recognizer/internal/factory"
	"go-shape-recognizer/internal/logger"
	"go-shape-recognizer/internal/observer"
	"go-shape-recognizer/internal/repository"
	"go-shape-recognizer/internal/service"
	"go-shape-recognizer/internal/transport"
	"go-shape-recognizer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config             *config.Config
	classifier         *classifier.Classifier
	canvasRepository   repository.CanvasRepository
	metrics            *observer.MetricsObserver
	recognitionService service.RecognitionService
	handler            http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	c, err := components.ClassifierFactory.CreateClassifier()
	if err != nil {
		return nil, err
	}

	httpSource, err := components.SourceFactory.CreateSource(factory.HTTPSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create http source: %w", err)
	}

	var blobs repository.BlobSource
	if cfg.AzureEnabled() {
		src, err := components.SourceFactory.CreateSource(factory.AzureSource)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure source: %w", err)
		}
		blob, ok := src.(repository.BlobSource)
		if !ok {
			return nil, fmt.Errorf("azure source %T cannot claim blob URLs", src)
		}
		blobs = blob
	}

	var urlValidator *validation.URLValidator
	if hosts := cfg.CanvasHosts(); len(hosts) > 0 {
		urlValidator = validation.NewURLValidatorWithOptions([]string{"http", "https"}, hosts)
	}
	canvasRepository := repository.NewCanvasRepository(httpSource, blobs, urlValidator)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	recognitionService := service.NewRecognitionService(
		canvasRepository,
		c,
		validation.NewCanvasValidator(validation.CanvasLimits{
			MaxWidth:  cfg.MaxCanvasWidth,
			MaxHeight: cfg.MaxCanvasHeight,
		}),
		events,
		service.Config{
			CanvasWidth:      cfg.CanvasWidth,
			CanvasHeight:     cfg.CanvasHeight,
			MaxBatchSize:     cfg.MaxBatchSize,
			BatchConcurrency: cfg.BatchConcurrency,
		},
	)
	handler := transport.NewHandler(recognitionService, metrics, cfg)

	return &Container{
		config:             cfg,
		classifier:         c,
		canvasRepository:   canvasRepository,
		metrics:            metrics,
		recognitionService: recognitionService,
		handler:            handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// RecognitionService returns the recognition service
func (c *Container) RecognitionService() service.RecognitionService {
	return c.recognitionService
}

// Metrics returns the recognition counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
