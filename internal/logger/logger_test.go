package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deppfellow/anime-api/internal/config"
)

func TestNewLoggerService(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()

	service, err := NewLoggerService(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.GetApplication() != nil {
		t.Error("expected no new relic app without license key")
	}

	var nilService *LoggerService
	if nilService.GetApplication() != nil {
		t.Error("nil service should return nil app")
	}
	nilService.Shutdown()
}

func TestNewLoggerJSON(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Environment = "production"
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	log := newLogger(cfg, nil, &buf)

	log.Info().Msg("dropped")
	log.Warn().Str("anime", "kingdom").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != config.ServiceName {
		t.Errorf("expected service field, got %v", entry["service"])
	}
	if entry["anime"] != "kingdom" {
		t.Errorf("expected anime field, got %v", entry["anime"])
	}
}

func TestLevels(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Error("debug")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Error("unknown levels should fall back to info")
	}
	if GetPgxTraceLogLevel(zerolog.DebugLevel) != 5 {
		t.Error("debug should map to pgx level 5")
	}
	if GetPgxTraceLogLevel(zerolog.Disabled) != 1 {
		t.Error("disabled should map to pgx none")
	}
}

func TestWithTraceContextNil(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	traced := WithTraceContext(log, nil)
	traced.Info().Msg("x")
	if bytes.Contains(buf.Bytes(), []byte("trace.id")) {
		t.Error("nil transaction must not add trace fields")
	}
}
