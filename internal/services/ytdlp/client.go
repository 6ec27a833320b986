// Package ytdlp wraps the yt-dlp command-line downloader used by the media
// acquisition stage.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
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

// CLI wraps the yt-dlp command-line downloader.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Fetch downloads the video at url into the caller's output template. The
// format selection pins the container to mp4 so the final artifact lands at
// the deterministic cache path. yt-dlp either completes the whole download
// or exits non-zero; the combined output is carried in the returned error.
func (c *CLI) Fetch(ctx context.Context, url, outputTemplate string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("fetch: url required")
	}
	if strings.TrimSpace(outputTemplate) == "" {
		return errors.New("fetch: output template required")
	}

	args := []string{
		"-f", "best[ext=mp4]",
		"--no-playlist",
		"--no-warnings",
		"-o", outputTemplate,
		url,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
