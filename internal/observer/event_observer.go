package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-shape-recognizer/internal/logger"
)

// RecognitionEvent describes one step of a recognition request
type RecognitionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	Source         string                 `json:"source"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Label          string                 `json:"label,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of recognition event
type EventType string

const (
	RecognitionStarted   EventType = "recognition_started"
	RecognitionCompleted EventType = "recognition_completed"
	RecognitionFailed    EventType = "recognition_failed"
	CanvasFetched        EventType = "canvas_fetched"
	CanvasFetchFailed    EventType = "canvas_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event RecognitionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event RecognitionEvent)
}

// LoggingObserver logs recognition events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles recognition events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event RecognitionEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"request_id":      event.RequestID,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
	}
	if event.Label != "" {
		fields["label"] = event.Label
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case RecognitionStarted:
		entry.Debug("Recognition started")
	case RecognitionCompleted:
		entry.Info("Recognition completed")
	case RecognitionFailed:
		entry.Error("Recognition failed")
	case CanvasFetched:
		entry.Debug("Canvas fetched successfully")
	case CanvasFetchFailed:
		entry.Error("Canvas fetch failed")
	default:
		entry.Info("Recognition event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Stats is a snapshot of MetricsObserver counters
type Stats struct {
	TotalRecognitions      int64            `json:"total_recognitions"`
	SuccessfulRecognitions int64            `json:"successful_recognitions"`
	FailedRecognitions     int64            `json:"failed_recognitions"`
	LabelCounts            map[string]int64 `json:"label_counts"`
	AvgProcessingTimeMs    float64          `json:"avg_processing_time_ms"`
}

// MetricsObserver counts recognitions per outcome and label
type MetricsObserver struct {
	mu                  sync.RWMutex
	total               int64
	successful          int64
	failed              int64
	labels              map[string]int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{labels: make(map[string]int64)}
}

// OnEvent handles recognition events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event RecognitionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// Counted on outcome; decode failures publish no start event
	switch event.EventType {
	case RecognitionCompleted:
		o.total++
		o.successful++
		o.totalProcessingTime += event.ProcessingTime
		if event.Label != "" {
			o.labels[event.Label]++
		}
	case RecognitionFailed:
		o.total++
		o.failed++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Stats returns current counters
func (o *MetricsObserver) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	labels := make(map[string]int64, len(o.labels))
	for k, v := range o.labels {
		labels[k] = v
	}

	var avg float64
	if o.successful > 0 {
		avg = float64(o.totalProcessingTime.Microseconds()) / float64(o.successful) / 1000
	}

	return Stats{
		TotalRecognitions:      o.total,
		SuccessfulRecognitions: o.successful,
		FailedRecognitions:     o.failed,
		LabelCounts:            labels,
		AvgProcessingTimeMs:    avg,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer synchronously, in
// subscription order. A panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event RecognitionEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, obs := range observers {
		notify(ctx, obs, event)
	}
}

func notify(ctx context.Context, obs Observer, event RecognitionEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"observer":   obs.GetObserverName(),
				"event_type": event.EventType,
				"panic":      r,
			}).Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
