// Package services defines the shared error taxonomy and context plumbing used
// by the external-tool wrappers (yt-dlp, ffmpeg, whisper) and the pipeline.
//
// Stage code wraps failures with Wrap so that every error carries a sentinel
// marker for classification, the stage that produced it, and the underlying
// tool's diagnostic output. The reporter recovers the failing stage with
// StageFromError when it builds the run log.
package services
