// Package pipeline executes the four-stage per-video workflow across a
// fixed-size worker pool.
//
// Each worker loads one warm speech-to-text model at startup and then runs
// acquisition, audio extraction, transcription, and keyframe capture for
// every job it is handed. Stage outputs live in the shared cache layout, so a
// rerun against the same output root skips completed work. Stage failures are
// converted into terminal job results; they never escape a worker.
package pipeline
