// Package whisper wraps the Whisper speech-to-text CLI and the warm
// per-worker model handle built on top of it.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Model is a warm speech-to-text handle. Load constructs it once per worker;
// the expensive part (resolving and materializing the whisper environment,
// plus the model weight download on first use) happens at load time so each
// subsequent Transcribe call on the same worker reuses the cached
// environment. A Model is safe to reuse for the lifetime of its worker.
type Model struct {
	cfg    Config
	binary string
}

// Load prepares a model handle for a worker. It fails when the uvx launcher
// is missing or the whisper environment cannot be materialized, which the
// pool treats as a dead worker slot.
func Load(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	binary := strings.TrimSpace(cfg.UVXBinary)
	if binary == "" {
		binary = UVXCommand
	}

	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("load model: launcher %q not found: %w", binary, err)
	}

	// First run resolves and caches the whisper environment; later runs hit
	// the uv cache and start in milliseconds.
	warmup := commandContext(ctx, binary, "--from", WhisperPackage, WhisperCommand, "--help")
	if output, err := warmup.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("load model: materialize whisper environment: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return &Model{cfg: cfg, binary: binary}, nil
}

// Name returns the configured model size for logging and reports.
func (m *Model) Name() string {
	return m.cfg.Model
}

// Segment represents a transcribed segment from whisper JSON output.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result contains the parsed output of a transcription.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Transcribe runs the model against a normalized waveform file and parses the
// timestamped segments from the CLI's JSON output. The language hint falls
// back to the handle's configured language when empty.
func (m *Model) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	var result Result

	if strings.TrimSpace(audioPath) == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if language == "" {
		language = m.cfg.Language
	}

	workDir, err := os.MkdirTemp("", "vidmill-whisper-*")
	if err != nil {
		return result, fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	args := []string{
		"--from", WhisperPackage,
		WhisperCommand,
		audioPath,
		"--model", m.cfg.Model,
		"--language", language,
		"--output_format", OutputFormat,
		"--output_dir", workDir,
		"--fp16", "False",
	}
	cmd := commandContext(ctx, m.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return result, fmt.Errorf("whisper: %w: %s", err, strings.TrimSpace(string(output)))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(workDir, baseName+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return result, fmt.Errorf("whisper: read output: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("whisper: parse output: %w", err)
	}
	return result, nil
}
