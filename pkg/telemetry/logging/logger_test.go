package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"tessera-hq/meridian/pkg/config"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("scopes loaded", "count", 3)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "scopes loaded" {
		t.Errorf("msg = %v, want %q", entry["msg"], "scopes loaded")
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v, want 3", entry["count"])
	}
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("reload complete", "version", "abc123")

	out := buf.String()
	if !strings.Contains(out, "msg=\"reload complete\"") {
		t.Errorf("output = %q, want text format message", out)
	}
	if !strings.Contains(out, "version=abc123") {
		t.Errorf("output = %q, want version attribute", out)
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("not shown")
	logger.Info("not shown either")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Errorf("output = %q, want debug and info suppressed", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("output = %q, want warn message", out)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "verbose"}, nil); err == nil {
		t.Error("New() error = nil, want error for unknown level")
	}
	if _, err := New(config.LoggingConfig{Format: "logfmt"}, nil); err == nil {
		t.Error("New() error = nil, want error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    LogFormat
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"text", FormatText, false},
		{"TEXT", FormatText, false},
		{"logfmt", FormatJSON, true},
	}

	for _, tt := range tests {
		got, err := parseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if slog.Default() != logger {
		t.Error("Setup() did not install the logger as slog default")
	}
}
