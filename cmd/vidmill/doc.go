// Command vidmill processes batches of remote videos into transcripts and
// keyframes: download, audio extraction, transcription, and frame capture,
// with per-stage caching across runs.
package main
