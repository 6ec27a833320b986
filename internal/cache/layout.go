package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves deterministic artifact paths beneath a single output root.
type Layout struct {
	root string
}

// NewLayout builds a layout rooted at the given output directory.
func NewLayout(root string) Layout {
	return Layout{root: root}
}

// Root returns the output root directory.
func (l Layout) Root() string { return l.root }

// EnsureDirs creates the stage directories a run writes into.
func (l Layout) EnsureDirs() error {
	dirs := []string{
		filepath.Join(l.root, "raw_videos"),
		filepath.Join(l.root, "audio"),
		filepath.Join(l.root, "transcripts"),
		filepath.Join(l.root, "frames"),
		filepath.Join(l.root, "individual"),
		filepath.Join(l.root, "reports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stage directory %q: %w", dir, err)
		}
	}
	return nil
}

// VideoPath returns the raw media path for a video.
func (l Layout) VideoPath(videoID string) string {
	return filepath.Join(l.root, "raw_videos", videoID+".mp4")
}

// VideoOutputTemplate returns the yt-dlp output template for a video. The
// extension placeholder keeps yt-dlp from double-appending extensions while
// the selected format pins the final name to VideoPath.
func (l Layout) VideoOutputTemplate(videoID string) string {
	return filepath.Join(l.root, "raw_videos", videoID+".%(ext)s")
}

// AudioPath returns the normalized waveform path for a video.
func (l Layout) AudioPath(videoID string) string {
	return filepath.Join(l.root, "audio", videoID+".wav")
}

// TranscriptPath returns the transcript JSON path for a video.
func (l Layout) TranscriptPath(videoID string) string {
	return filepath.Join(l.root, "transcripts", videoID+".json")
}

// FramesDir returns the keyframe directory for a video.
func (l Layout) FramesDir(videoID string) string {
	return filepath.Join(l.root, "frames", videoID)
}

// FramePath returns the frame file for a specific integer second.
func (l Layout) FramePath(videoID string, second int) string {
	return filepath.Join(l.FramesDir(videoID), fmt.Sprintf("frame_%05ds.jpg", second))
}

// SummaryPath returns the per-video summary path.
func (l Layout) SummaryPath(videoID string) string {
	return filepath.Join(l.root, "individual", videoID, "summary.json")
}

// RunLogPath returns the machine-readable run log path.
func (l Layout) RunLogPath() string {
	return filepath.Join(l.root, "processing_log.json")
}

// ReportPath returns the human-readable summary path for a run timestamp.
func (l Layout) ReportPath(timestamp string) string {
	return filepath.Join(l.root, "reports", "processing_summary_"+timestamp+".md")
}

// LockPath returns the advisory run-lock file path.
func (l Layout) LockPath() string {
	return filepath.Join(l.root, ".vidmill.lock")
}

// Exists reports whether a completed cache entry is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteJSON persists a document at path, writing to a temporary file in the
// same directory first so a crash never leaves a partially written cache
// entry behind.
func WriteJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
