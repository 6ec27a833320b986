package pipeline

import (
	"time"

	"vidmill/internal/jobs"
)

// Stage names used in results, logs, and reports.
const (
	StageDownload   = "download"
	StageAudio      = "audio"
	StageTranscript = "transcript"
	StageFrames     = "frames"
)

// StageStatus records how a single stage concluded for one job.
type StageStatus string

const (
	StageFresh  StageStatus = "fresh"
	StageCached StageStatus = "cached"
	StageFailed StageStatus = "failed"
)

// StageStatuses tracks the per-stage outcome of one job, in pipeline order.
type StageStatuses struct {
	Download   StageStatus `json:"download,omitempty"`
	Audio      StageStatus `json:"audio,omitempty"`
	Transcript StageStatus `json:"transcript,omitempty"`
	Frames     StageStatus `json:"frames,omitempty"`
}

func (s *StageStatuses) set(stage string, status StageStatus) {
	switch stage {
	case StageDownload:
		s.Download = status
	case StageAudio:
		s.Audio = status
	case StageTranscript:
		s.Transcript = status
	case StageFrames:
		s.Frames = status
	}
}

// AllCached reports whether every stage was a cache hit.
func (s StageStatuses) AllCached() bool {
	return s.Download == StageCached && s.Audio == StageCached &&
		s.Transcript == StageCached && s.Frames == StageCached
}

// Outcome is a job's terminal status.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// JobResult is the immutable terminal record for one job. Exactly one is
// produced per job, regardless of success or failure, and the reporter owns
// it after creation.
type JobResult struct {
	VideoID     string        `json:"video_id"`
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	ProcessedAt time.Time     `json:"processed_at"`
	WorkerID    int           `json:"worker_id,omitempty"`
	Stages      StageStatuses `json:"status"`
	WordCount   int           `json:"word_count,omitempty"`
	Duration    float64       `json:"duration,omitempty"`
	FrameCount  int           `json:"frame_count,omitempty"`
	Outcome     Outcome       `json:"overall_status"`
	FailedStage string        `json:"failed_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// SkippedResult records a job rejected by the validity filter before dispatch.
func SkippedResult(job jobs.Job, reason string) JobResult {
	return JobResult{
		VideoID:     job.VideoID,
		Title:       job.Title,
		URL:         job.URL,
		ProcessedAt: time.Now().UTC(),
		Outcome:     OutcomeSkipped,
		Error:       reason,
	}
}
