package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{"API_PORT", "MODEL_FILE", "TEST_SIZE", "RANDOM_STATE", "MAX_ITER", "PDF_RENDER_DPI", "MAX_UPLOAD_BYTES", "API_RATE_LIMIT_RPS", "ASYNC_INGEST_ENABLED", "NATS_SUBJECT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.APIPort)
	}
	if cfg.ModelFile != "models/text_classification_model.msgpack" {
		t.Fatalf("unexpected default model file %q", cfg.ModelFile)
	}
	if cfg.TestSize != 0.2 || cfg.RandomState != 97 || cfg.MaxIter != 500 {
		t.Fatalf("unexpected training defaults: %v %d %d", cfg.TestSize, cfg.RandomState, cfg.MaxIter)
	}
	if cfg.PDFRenderDPI != 200 {
		t.Fatalf("expected default dpi 200, got %d", cfg.PDFRenderDPI)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Fatalf("expected 32 MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.APIRateLimitRPS != 0 || cfg.AsyncIngestEnabled {
		t.Fatalf("expected rate limit and async ingest disabled by default")
	}
	if cfg.NATSSubject != "documents.classify" {
		t.Fatalf("unexpected default subject %q", cfg.NATSSubject)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TEST_SIZE", "0.3")
	t.Setenv("MAX_ITER", "50")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("ASYNC_INGEST_ENABLED", "true")
	t.Setenv("PDF_OCR_WORKERS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TestSize != 0.3 || cfg.MaxIter != 50 || cfg.APIRateLimitRPS != 2.5 || !cfg.AsyncIngestEnabled {
		t.Fatalf("expected overrides, got %+v", cfg)
	}
	if cfg.PDFOCRWorkers != 4 {
		t.Fatalf("expected invalid int to fall back to 4, got %d", cfg.PDFOCRWorkers)
	}
}

func TestLoadFileOverlayBelowEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "API_PORT: 9000\nOCR_LANGUAGE: eng+deu\nTEST_SIZE: 0.25\nASYNC_INGEST_ENABLED: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "")
	t.Setenv("TEST_SIZE", "")
	t.Setenv("ASYNC_INGEST_ENABLED", "")
	t.Setenv("OCR_LANGUAGE", "rus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9000" || cfg.TestSize != 0.25 || !cfg.AsyncIngestEnabled {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.OCRLanguage != "rus" {
		t.Fatalf("expected env to win over file, got %q", cfg.OCRLanguage)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("API_PORT: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected read error")
	}
}
