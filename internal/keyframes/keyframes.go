// Package keyframes derives representative capture timestamps from transcript
// segments and executes the per-timestamp frame grabs.
package keyframes

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"vidmill/internal/cache"
	"vidmill/internal/logging"
	"vidmill/internal/transcript"
)

// LongSegmentSeconds is the segment duration at which a midpoint candidate is
// added: long spans of continuous speech tend to contain more than one
// visually distinct moment.
const LongSegmentSeconds = 12

// Derive computes the sorted set of unique integer capture seconds.
//
// Transcript segments contribute floor(start) each, plus the midpoint of
// segments at least LongSegmentSeconds long. On top of that, every multiple
// of fallbackInterval covers [0, ceil(duration)] so gaps between speech still
// produce frames. The result is clipped to [0, ceil(duration)]; a zero or
// unknown duration yields no candidates.
func Derive(segments []transcript.Segment, fallbackInterval int, duration float64) []int {
	if duration <= 0 || fallbackInterval <= 0 {
		return nil
	}
	ceiling := int(math.Ceil(duration))

	candidates := make(map[int]struct{})
	for _, segment := range segments {
		if segment.Start < 0 {
			continue
		}
		candidates[int(segment.Start)] = struct{}{}
		if segment.End-segment.Start >= LongSegmentSeconds {
			mid := segment.Start + (segment.End-segment.Start)/2
			candidates[int(mid)] = struct{}{}
		}
	}
	for point := 0; point <= ceiling; point += fallbackInterval {
		candidates[point] = struct{}{}
	}

	seconds := make([]int, 0, len(candidates))
	for second := range candidates {
		if second < 0 || second > ceiling {
			continue
		}
		seconds = append(seconds, second)
	}
	sort.Ints(seconds)
	return seconds
}

// Grabber captures a single frame from videoPath at the given second.
type Grabber interface {
	GrabFrame(ctx context.Context, videoPath string, second int, outputPath string) error
}

// PathFunc resolves the output file for a capture second.
type PathFunc func(second int) string

// CaptureResult summarizes a capture pass over a candidate set.
type CaptureResult struct {
	Captured int
	Cached   int
	Failed   int
}

// Capture grabs one frame per candidate second. A second whose target file
// already exists is a per-timestamp cache hit. A failed grab does not abort
// the remaining timestamps; it is counted and logged. The caller treats the
// pass as a stage failure only when every attempted grab failed, which is the
// signature of a source the seek tool cannot open.
func Capture(ctx context.Context, grabber Grabber, logger *slog.Logger, videoPath string, seconds []int, pathFor PathFunc) CaptureResult {
	if logger == nil {
		logger = logging.NewNop()
	}
	var result CaptureResult
	for _, second := range seconds {
		target := pathFor(second)
		if cache.Exists(target) {
			result.Cached++
			continue
		}
		if err := grabber.GrabFrame(ctx, videoPath, second, target); err != nil {
			result.Failed++
			logger.Warn("frame capture failed",
				logging.String(logging.FieldEventType, "frame_capture_failed"),
				logging.Int("second", second),
				logging.Error(err),
			)
			continue
		}
		result.Captured++
	}
	return result
}

// AllFailed reports whether every attempted grab in the pass failed.
func (r CaptureResult) AllFailed() bool {
	return r.Failed > 0 && r.Captured == 0 && r.Cached == 0
}
