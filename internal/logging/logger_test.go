package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidmill/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "vidmill.log")

	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("pipeline started", String("source", "videos.json"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "pipeline started") {
		t.Fatalf("expected log entry in file, got %q", string(data))
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithVideoID(context.Background(), "abc123")
	ctx = services.WithStage(ctx, "download")
	ctx = services.WithWorkerID(ctx, 2)
	ctx = services.WithRunID(ctx, "run-456")

	fields := ContextFields(ctx)
	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		keys[f.Key] = true
	}
	for _, want := range []string{FieldVideoID, FieldStage, FieldWorkerID, FieldRunID} {
		if !keys[want] {
			t.Fatalf("expected context field %q, got %v", want, keys)
		}
	}
}

func TestNewComponentLoggerNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "pipeline")
	if logger == nil {
		t.Fatal("expected no-op backed logger, got nil")
	}
	logger.Info("should not panic")
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected no-op logger, got nil")
	}
	logger.Info("should not panic")
}
