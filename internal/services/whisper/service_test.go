package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFailsWithoutLauncher(t *testing.T) {
	if _, err := Load(context.Background(), Config{UVXBinary: filepath.Join(t.TempDir(), "missing-uvx")}); err == nil {
		t.Fatal("expected error when launcher binary is missing")
	}
}

func TestLoadDefaultsModelAndLanguage(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = original })

	model, err := Load(context.Background(), Config{UVXBinary: "sh"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if model.Name() != DefaultModel {
		t.Fatalf("expected default model, got %q", model.Name())
	}
	if model.cfg.Language != DefaultLanguage {
		t.Fatalf("expected default language, got %q", model.cfg.Language)
	}
}

func TestTranscribeParsesOutput(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string{name}, args...)
		// Mimic the whisper CLI: drop a JSON transcript named after the
		// audio file into --output_dir.
		var outputDir string
		for i, arg := range args {
			if arg == "--output_dir" && i+1 < len(args) {
				outputDir = args[i+1]
			}
		}
		payload := Result{
			Text:     "hello world",
			Language: "en",
			Segments: []Segment{{Start: 0, End: 2.5, Text: "hello world"}},
		}
		data, _ := json.Marshal(payload)
		if outputDir != "" {
			_ = os.WriteFile(filepath.Join(outputDir, "sample.json"), data, 0o644)
		}
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = original })

	model := &Model{cfg: Config{Model: "small", Language: "en"}, binary: "uvx"}
	result, err := model.Transcribe(context.Background(), "/audio/sample.wav", "")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if result.Text != "hello world" || len(result.Segments) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Segments[0].End != 2.5 {
		t.Fatalf("unexpected segment %+v", result.Segments[0])
	}

	joined := strings.Join(capturedArgs, " ")
	for _, want := range []string{"--model small", "--language en", "--output_format json", "/audio/sample.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in command %q", want, joined)
		}
	}
}

func TestTranscribeRequiresAudioPath(t *testing.T) {
	model := &Model{cfg: Config{Model: "small"}, binary: "uvx"}
	if _, err := model.Transcribe(context.Background(), "", "en"); err == nil {
		t.Fatal("expected error when audio path is empty")
	}
}

func TestTranscribeSurfacesToolFailure(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("echo %q >&2; exit 3", "CUDA out of memory"))
	}
	t.Cleanup(func() { commandContext = original })

	model := &Model{cfg: Config{Model: "small", Language: "en"}, binary: "uvx"}
	_, err := model.Transcribe(context.Background(), "/audio/sample.wav", "")
	if err == nil {
		t.Fatal("expected error from failing tool")
	}
	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("expected diagnostic output in error, got %v", err)
	}
}
