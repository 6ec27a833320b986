package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsSentinel(t *testing.T) {
	err := Wrap(ErrExternalTool, "download", "yt-dlp", "exit status 1", errors.New("network unreachable"))
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected wrapped error to match ErrExternalTool, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("wrapped error should not match unrelated sentinel")
	}
}

func TestStageFromError(t *testing.T) {
	err := Wrap(ErrExternalTool, "audio", "ffmpeg", "broken pipe", nil)
	stage, ok := StageFromError(err)
	if !ok || stage != "audio" {
		t.Fatalf("expected stage %q, got %q (ok=%v)", "audio", stage, ok)
	}

	wrapped := fmt.Errorf("job failed: %w", err)
	stage, ok = StageFromError(wrapped)
	if !ok || stage != "audio" {
		t.Fatalf("expected stage to survive further wrapping, got %q (ok=%v)", stage, ok)
	}

	if _, ok := StageFromError(errors.New("plain")); ok {
		t.Fatal("plain errors should not report a stage")
	}
}

func TestDetailsStripsSentinelPrefix(t *testing.T) {
	err := Wrap(ErrExternalTool, "transcript", "whisper", "model missing", nil)
	got := Details(err)
	want := "transcript: whisper: model missing"
	if got != want {
		t.Fatalf("Details = %q, want %q", got, want)
	}
	if Details(nil) != "" {
		t.Fatal("Details(nil) should be empty")
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "frames", "", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("nil marker should default to ErrExternalTool, got %v", err)
	}
	if Details(err) != "frames" {
		t.Fatalf("unexpected detail: %q", Details(err))
	}
}
