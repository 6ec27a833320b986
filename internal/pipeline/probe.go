package pipeline

import (
	"context"

	"vidmill/internal/media/ffprobe"
)

// DurationProber reports a media file's length in seconds. The pipeline only
// consults it when a video has no transcript to derive the duration from.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFprobeProber probes durations with ffprobe.
type FFprobeProber struct {
	Binary string
}

// Duration returns the container duration, or 0 when ffprobe cannot tell.
func (p FFprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, err
	}
	return result.DurationSeconds(), nil
}
