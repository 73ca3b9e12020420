package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected defaults to load, got %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Expected 0.0.0.0:8080, got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.CanvasWidth != 700 || cfg.CanvasHeight != 300 {
		t.Errorf("Expected 700x300 canvas, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.Thresholds.MinPixels != 500 || cfg.Thresholds.SimpleSpreadLimit != 120 {
		t.Errorf("Expected default thresholds, got %+v", cfg.Thresholds)
	}
	if cfg.AzureEnabled() {
		t.Error("Expected Azure to be disabled without credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", " 9090 ")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CANVAS_WIDTH", "800")
	t.Setenv("CANVAS_HEIGHT", "400")
	t.Setenv("MAX_BATCH_SIZE", "8")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "sketches")
	t.Setenv("AZURE_STORAGE_KEY", "c2VjcmV0")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected overrides to load, got %v", err)
	}
	if cfg.ServerAddress() != "127.0.0.1:9090" {
		t.Errorf("Expected 127.0.0.1:9090, got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %s", cfg.RequestTimeout)
	}
	if cfg.CanvasWidth != 800 || cfg.CanvasHeight != 400 {
		t.Errorf("Expected 800x400, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.MaxBatchSize != 8 {
		t.Errorf("Expected batch size 8, got %d", cfg.MaxBatchSize)
	}
	if !cfg.AzureEnabled() {
		t.Error("Expected Azure to be enabled")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"zero body size", "MAX_REQUEST_BODY_SIZE", "0"},
		{"zero batch size", "MAX_BATCH_SIZE", "0"},
		{"canvas above max", "CANVAS_WIDTH", "5000"},
		{"azure account without key", "AZURE_STORAGE_ACCOUNT", "sketches"},
		{"missing classifier config", "CLASSIFIER_CONFIG", "/nonexistent/classifier.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_ClassifierConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.yaml")
	content := "classifier:\n  min_pixels: 750\n  simple_spread_limit: 90.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("CLASSIFIER_CONFIG", path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}
	if cfg.Thresholds.MinPixels != 750 {
		t.Errorf("Expected min pixels 750, got %d", cfg.Thresholds.MinPixels)
	}
	if cfg.Thresholds.SimpleSpreadLimit != 90.5 {
		t.Errorf("Expected spread limit 90.5, got %f", cfg.Thresholds.SimpleSpreadLimit)
	}
	// keys absent from the file keep their defaults
	if cfg.Thresholds.DrawnIntensityCutoff != 250 || cfg.Thresholds.ConfidencePixelScale != 8000 {
		t.Errorf("Expected unspecified thresholds to keep defaults, got %+v", cfg.Thresholds)
	}
}

func TestParseThresholds_Invalid(t *testing.T) {
	if _, err := ParseThresholds([]byte("classifier: [not, a, map]")); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := ParseThresholds([]byte("classifier:\n  drawn_intensity_cutoff: 300\n")); err == nil {
		t.Error("Expected overflow error for cutoff above 255")
	}
}

func TestLoadFromEnv_InvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.yaml")
	if err := os.WriteFile(path, []byte("classifier:\n  confidence_pixel_scale: 0\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("CLASSIFIER_CONFIG", path)

	_, err := LoadFromEnv()
	if err == nil || !strings.Contains(err.Error(), "invalid classifier thresholds") {
		t.Errorf("Expected invalid thresholds error, got %v", err)
	}
}

func TestLoadFromEnv_AllowedCanvasHosts(t *testing.T) {
	t.Setenv("ALLOWED_CANVAS_HOSTS", " cdn.example.com, ,uploads.example.com ")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}
	if len(cfg.AllowedCanvasHosts) != 2 || cfg.AllowedCanvasHosts[1] != "uploads.example.com" {
		t.Errorf("Unexpected hosts %v", cfg.AllowedCanvasHosts)
	}
	if hosts := cfg.CanvasHosts(); len(hosts) != 2 {
		t.Errorf("Expected 2 canvas hosts without Azure, got %v", hosts)
	}

	cfg.AzureStorageAccount = "sketches"
	cfg.AzureStorageKey = "c2VjcmV0"
	hosts := cfg.CanvasHosts()
	if len(hosts) != 3 || hosts[2] != "sketches.blob.core.windows.net" {
		t.Errorf("Expected Azure account host to be allowed, got %v", hosts)
	}
	if len(cfg.AllowedCanvasHosts) != 2 {
		t.Error("Expected CanvasHosts not to modify the configured list")
	}
}

func TestCanvasHosts_Unrestricted(t *testing.T) {
	cfg := &Config{AzureStorageAccount: "sketches", AzureStorageKey: "c2VjcmV0"}
	if hosts := cfg.CanvasHosts(); hosts != nil {
		t.Errorf("Expected nil allow-list, got %v", hosts)
	}
}
