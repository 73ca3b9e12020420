package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-shape-recognizer/internal/classifier"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	CanvasFetchTimeout time.Duration
	MaxRequestBodySize int64

	// Drawing surface offered to clients, and the largest canvas accepted
	CanvasWidth     int
	CanvasHeight    int
	MaxCanvasWidth  int
	MaxCanvasHeight int

	MaxBatchSize     int
	BatchConcurrency int

	// Hosts canvases may be fetched from; empty allows any host
	AllowedCanvasHosts []string

	// Azure Blob Storage credentials; empty disables the blob source
	AzureStorageAccount string
	AzureStorageKey     string

	LogLevel  string
	LogFormat string

	ClassifierConfigPath string
	Thresholds           classifier.Thresholds
}

// thresholdsFile is the on-disk form of the classifier section
type thresholdsFile struct {
	Classifier classifier.Thresholds `yaml:"classifier"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// CanvasHosts returns the host allow-list for remote canvases. The Azure
// account host is added when blob storage is configured. Nil allows any host.
func (c *Config) CanvasHosts() []string {
	if len(c.AllowedCanvasHosts) == 0 {
		return nil
	}
	hosts := append([]string(nil), c.AllowedCanvasHosts...)
	if c.AzureEnabled() {
		hosts = append(hosts, c.AzureStorageAccount+".blob.core.windows.net")
	}
	return hosts
}

// AzureEnabled reports whether blob storage credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:                 getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                 getEnvOrDefault("PORT", "8080"),
		RequestTimeout:       parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		CanvasFetchTimeout:   parseDurationOrDefault("CANVAS_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize:   parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		CanvasWidth:          int(parseIntOrDefault("CANVAS_WIDTH", 700)),
		CanvasHeight:         int(parseIntOrDefault("CANVAS_HEIGHT", 300)),
		MaxCanvasWidth:       int(parseIntOrDefault("MAX_CANVAS_WIDTH", 4096)),
		MaxCanvasHeight:      int(parseIntOrDefault("MAX_CANVAS_HEIGHT", 4096)),
		MaxBatchSize:         int(parseIntOrDefault("MAX_BATCH_SIZE", 32)),
		BatchConcurrency:     int(parseIntOrDefault("BATCH_CONCURRENCY", 4)),
		AllowedCanvasHosts:   parseListOrEmpty("ALLOWED_CANVAS_HOSTS"),
		AzureStorageAccount:  strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:      strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		ClassifierConfigPath: strings.TrimSpace(os.Getenv("CLASSIFIER_CONFIG")),
		Thresholds:           classifier.DefaultThresholds(),
	}

	if cfg.ClassifierConfigPath != "" {
		thresholds, err := LoadThresholds(cfg.ClassifierConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Thresholds = thresholds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges of all settings
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.CanvasFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			c.RequestTimeout, c.CanvasFetchTimeout)
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size must be > 0 (got %dx%d)", c.CanvasWidth, c.CanvasHeight)
	}
	if c.MaxCanvasWidth < c.CanvasWidth || c.MaxCanvasHeight < c.CanvasHeight {
		return fmt.Errorf("max canvas size %dx%d is smaller than canvas size %dx%d",
			c.MaxCanvasWidth, c.MaxCanvasHeight, c.CanvasWidth, c.CanvasHeight)
	}
	if c.MaxBatchSize <= 0 || c.BatchConcurrency <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE and BATCH_CONCURRENCY must be > 0 (got %d, %d)",
			c.MaxBatchSize, c.BatchConcurrency)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid classifier thresholds: %w", err)
	}
	return nil
}

// LoadThresholds reads classifier thresholds from a YAML file. Keys missing
// from the file keep their default values.
func LoadThresholds(path string) (classifier.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return classifier.Thresholds{}, fmt.Errorf("failed to read classifier config: %w", err)
	}
	return ParseThresholds(data)
}

// ParseThresholds decodes the YAML classifier section on top of the defaults
func ParseThresholds(data []byte) (classifier.Thresholds, error) {
	file := thresholdsFile{Classifier: classifier.DefaultThresholds()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return classifier.Thresholds{}, fmt.Errorf("failed to parse classifier config: %w", err)
	}
	return file.Classifier, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

// parseListOrEmpty splits a comma separated variable, dropping blank entries
func parseListOrEmpty(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
