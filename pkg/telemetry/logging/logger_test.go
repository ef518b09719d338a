package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"bubu-hq/verifier/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid JSON config", Config{Level: "info", Format: "json"}, false},
		{"valid text config", Config{Level: "debug", Format: "text"}, false},
		{"valid console config", Config{Level: "warn", Format: "console"}, false},
		{"empty uses defaults", Config{}, false},
		{"invalid log level", Config{Level: "invalid", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "invalid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error should be written: %s", out)
	}
	if logger.Level() != slog.LevelWarn {
		t.Errorf("Level() = %v, want warn", logger.Level())
	}
	if logger.Enabled(slog.LevelInfo) {
		t.Error("Enabled(info) should be false at warn level")
	}
}

func TestLogger_JSONContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithSource(ctx, "batch.json")
	ctx = WithDocument(ctx, 2)
	logger.InfoContext(ctx, "document verified", "violations", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if record["msg"] != "document verified" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["run_id"] != "run-1" || record["source"] != "batch.json" {
		t.Errorf("missing context fields: %v", record)
	}
	if record["experiment"] != float64(2) {
		t.Errorf("experiment = %v, want 2", record["experiment"])
	}
	if record["violations"] != float64(3) {
		t.Errorf("violations = %v, want 3", record["violations"])
	}
}

func TestLogger_ConsoleOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hello")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console format should omit time: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Level: "info", Format: "text", Writer: &buf})

	logger.WithComponent("history").With("driver", "sqlite").Info("opened")

	out := buf.String()
	if !strings.Contains(out, "component=history") || !strings.Contains(out, "driver=sqlite") {
		t.Errorf("missing fields: %s", out)
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Level: "info", Format: "text", Writer: &buf})

	if logger.WithContext(context.Background()) != logger {
		t.Error("WithContext with no fields should return the same logger")
	}

	ctx := WithCommand(context.Background(), "validate")
	logger.WithContext(ctx).Info("start")
	if !strings.Contains(buf.String(), "command=validate") {
		t.Errorf("missing command field: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
	if logger.Enabled(slog.LevelError) {
		t.Error("Discard logger should not be enabled for any level")
	}
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := FromConfig(config.LoggingConfig{Level: "error", Format: "json", AddSource: true}, &buf)

	if cfg.Level != "error" || cfg.Format != "json" || !cfg.AddSource || cfg.Writer != &buf {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
