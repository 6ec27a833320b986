// Package ffmpeg wraps the ffmpeg invocations used by the audio extraction
// and keyframe capture stages.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// ExtractAudio demuxes the source into a mono 16 kHz PCM WAV file, the
// normalized input the speech-to-text model expects. The tool writes to a
// temporary path in the destination directory which is renamed into place
// only on success, so a killed or failed transcode never leaves a partial
// file at the final path.
func (c *CLI) ExtractAudio(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("extract audio: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("extract audio: destination path required")
	}

	tmp := partialPath(dest)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		tmp,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg extract: finalize %s: %w", dest, err)
	}
	return nil
}

// GrabFrame captures a single frame at the given second using an accurate
// seek, writing a JPEG at outputPath.
func (c *CLI) GrabFrame(ctx context.Context, videoPath string, second int, outputPath string) error {
	if strings.TrimSpace(videoPath) == "" {
		return errors.New("grab frame: source path required")
	}
	if second < 0 {
		return fmt.Errorf("grab frame: invalid timestamp %d", second)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("grab frame: ensure output dir: %w", err)
	}

	tmp := partialPath(outputPath)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%d", second),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2",
		tmp,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg frame: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg frame: finalize %s: %w", outputPath, err)
	}
	return nil
}

// partialPath returns the in-progress output path alongside the final one.
// Final paths are cache entries whose presence means "complete", so the tool
// must never write to them directly.
func partialPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".partial")
}
