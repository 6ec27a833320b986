package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vidmill/internal/cache"
	"vidmill/internal/jobs"
	"vidmill/internal/keyframes"
	"vidmill/internal/logging"
	"vidmill/internal/services"
	"vidmill/internal/services/whisper"
	"vidmill/internal/transcript"
)

// Fetcher downloads a remote video into the cache.
type Fetcher interface {
	Fetch(ctx context.Context, url, outputTemplate string) error
}

// AudioExtractor produces the normalized waveform file for a cached video.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, source, dest string) error
}

// Transcriber is the warm speech-to-text handle a worker holds for its
// lifetime. It is loaded exactly once per worker, never per job.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (whisper.Result, error)
}

// worker executes jobs sequentially against one warm model instance.
type worker struct {
	id       int
	settings Settings
	layout   cache.Layout
	fetcher  Fetcher
	audio    AudioExtractor
	grabber  keyframes.Grabber
	prober   DurationProber
	model    Transcriber
	logger   *slog.Logger
}

// Process runs all four stages for one job and returns its terminal result.
// Stage errors become a failed result; they never propagate out.
func (w *worker) Process(ctx context.Context, job jobs.Job) JobResult {
	ctx = services.WithWorkerID(services.WithVideoID(ctx, job.VideoID), w.id)
	logger := logging.WithContext(ctx, w.logger)

	result := JobResult{
		VideoID:     job.VideoID,
		Title:       job.Title,
		URL:         job.URL,
		ProcessedAt: time.Now().UTC(),
		WorkerID:    w.id,
	}

	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("title", strings.TrimSpace(job.Title)),
	)

	var doc transcript.Document
	var haveDoc bool

	stages := []struct {
		name    string
		timeout time.Duration
		fn      func(context.Context) (StageStatus, error)
	}{
		{StageDownload, w.settings.DownloadTimeout, func(sc context.Context) (StageStatus, error) {
			return w.downloadStage(sc, job)
		}},
		{StageAudio, w.settings.AudioTimeout, func(sc context.Context) (StageStatus, error) {
			return w.audioStage(sc, job)
		}},
		{StageTranscript, w.settings.TranscribeTimeout, func(sc context.Context) (StageStatus, error) {
			return w.transcriptStage(sc, job, &doc, &haveDoc, &result)
		}},
		{StageFrames, 0, func(sc context.Context) (StageStatus, error) {
			return w.framesStage(sc, job, doc, haveDoc, &result)
		}},
	}

	for _, stage := range stages {
		status, err := w.runStage(ctx, stage.name, stage.timeout, stage.fn)
		result.Stages.set(stage.name, status)
		if err != nil {
			result.Outcome = OutcomeFailed
			result.FailedStage = stage.name
			result.Error = services.Details(err)
			logger.Error("job failed",
				logging.String(logging.FieldEventType, "job_failed"),
				logging.String("failed_stage", stage.name),
				logging.Error(err),
			)
			return result
		}
	}

	result.Outcome = OutcomeSuccess
	if w.settings.WriteIndividualSummary {
		w.writeSummary(logger, job, result)
	}
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Int("word_count", result.WordCount),
		logging.Int("frame_count", result.FrameCount),
		logging.Duration("elapsed", time.Since(result.ProcessedAt)),
	)
	return result
}

// runStage applies the shared stage execution semantics: stage-tagged
// context, bounded timeout, and start/complete/failure logging.
func (w *worker) runStage(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) (StageStatus, error)) (StageStatus, error) {
	stageCtx := services.WithStage(ctx, name)
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(stageCtx, timeout)
		defer cancel()
	}
	stageLogger := logging.WithContext(stageCtx, w.logger)

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	status, err := fn(stageCtx)
	if err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(err),
		)
		return StageFailed, err
	}
	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("stage_result", string(status)),
	)
	return status, nil
}

func (w *worker) downloadStage(ctx context.Context, job jobs.Job) (StageStatus, error) {
	target := w.layout.VideoPath(job.VideoID)
	if cache.Exists(target) {
		return StageCached, nil
	}
	if err := w.fetcher.Fetch(ctx, job.URL, w.layout.VideoOutputTemplate(job.VideoID)); err != nil {
		return StageFailed, wrapStageError(ctx, StageDownload, "yt-dlp", err)
	}
	if !cache.Exists(target) {
		return StageFailed, services.Wrap(services.ErrExternalTool, StageDownload, "yt-dlp",
			fmt.Sprintf("download finished but no file at %s", target), nil)
	}
	return StageFresh, nil
}

func (w *worker) audioStage(ctx context.Context, job jobs.Job) (StageStatus, error) {
	target := w.layout.AudioPath(job.VideoID)
	if cache.Exists(target) {
		return StageCached, nil
	}
	if err := w.audio.ExtractAudio(ctx, w.layout.VideoPath(job.VideoID), target); err != nil {
		return StageFailed, wrapStageError(ctx, StageAudio, "ffmpeg", err)
	}
	if !cache.Exists(target) {
		return StageFailed, services.Wrap(services.ErrExternalTool, StageAudio, "ffmpeg",
			fmt.Sprintf("extraction finished but no file at %s", target), nil)
	}
	return StageFresh, nil
}

func (w *worker) transcriptStage(ctx context.Context, job jobs.Job, doc *transcript.Document, haveDoc *bool, result *JobResult) (StageStatus, error) {
	path := w.layout.TranscriptPath(job.VideoID)
	if cache.Exists(path) {
		loaded, err := transcript.Load(path)
		if err == nil {
			*doc = loaded
			*haveDoc = true
			result.WordCount = loaded.WordCount
			result.Duration = loaded.Duration
			return StageCached, nil
		}
		// Unreadable entries are recomputed and overwritten rather than
		// failing the job.
		logging.WithContext(ctx, w.logger).Warn("cached transcript unreadable, retranscribing",
			logging.String(logging.FieldEventType, "transcript_cache_invalid"),
			logging.Error(err),
		)
	}

	output, err := w.model.Transcribe(ctx, w.layout.AudioPath(job.VideoID), w.settings.Language)
	if err != nil {
		return StageFailed, wrapStageError(ctx, StageTranscript, "whisper", err)
	}

	segments := make([]transcript.Segment, 0, len(output.Segments))
	for _, segment := range output.Segments {
		segments = append(segments, transcript.Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  strings.TrimSpace(segment.Text),
		})
	}
	fresh := transcript.New(job.VideoID, job.Title, strings.TrimSpace(output.Text), segments)
	if err := transcript.Save(path, fresh); err != nil {
		return StageFailed, services.Wrap(services.ErrExternalTool, StageTranscript, "persist", "", err)
	}

	*doc = fresh
	*haveDoc = true
	result.WordCount = fresh.WordCount
	result.Duration = fresh.Duration
	return StageFresh, nil
}

func (w *worker) framesStage(ctx context.Context, job jobs.Job, doc transcript.Document, haveDoc bool, result *JobResult) (StageStatus, error) {
	logger := logging.WithContext(ctx, w.logger)

	var segments []transcript.Segment
	duration := 0.0
	if haveDoc {
		segments = doc.Segments
		duration = doc.Duration
	}
	if duration <= 0 {
		probeCtx := ctx
		if w.settings.FrameCaptureTimeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, w.settings.FrameCaptureTimeout)
			defer cancel()
		}
		probed, err := w.prober.Duration(probeCtx, w.layout.VideoPath(job.VideoID))
		if err != nil {
			logger.Warn("duration probe failed, no fallback interval coverage",
				logging.String(logging.FieldEventType, "duration_probe_failed"),
				logging.Error(err),
			)
		} else {
			logger.Debug("duration probed",
				logging.String(logging.FieldEventType, "duration_probed"),
				logging.Float64("duration_seconds", probed),
			)
			duration = probed
		}
	}

	seconds := keyframes.Derive(segments, w.settings.FrameInterval, duration)
	if len(seconds) == 0 {
		// Zero or unknown duration yields zero frames, not an error.
		result.FrameCount = 0
		return StageFresh, nil
	}

	captureCtx := ctx
	if w.settings.FrameCaptureTimeout > 0 {
		// The budget bounds the whole pass, not each individual grab.
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, w.settings.FrameCaptureTimeout*time.Duration(len(seconds)))
		defer cancel()
	}
	pass := keyframes.Capture(captureCtx, w.grabber, logger, w.layout.VideoPath(job.VideoID), seconds, func(second int) string {
		return w.layout.FramePath(job.VideoID, second)
	})

	result.FrameCount = pass.Captured + pass.Cached
	if pass.AllFailed() {
		return StageFailed, services.Wrap(services.ErrExternalTool, StageFrames, "ffmpeg",
			fmt.Sprintf("all %d captures failed, source unreadable", pass.Failed), nil)
	}
	if pass.Failed > 0 {
		logger.Warn("some frame captures failed",
			logging.String(logging.FieldEventType, "frame_capture_partial"),
			logging.Int("failed", pass.Failed),
			logging.Int("captured", pass.Captured),
			logging.Int("cached", pass.Cached),
		)
	}
	// Cached only when the pass did no work at all. A pass with failures is
	// reported fresh so partial failures are never masked as a cache hit.
	if pass.Captured == 0 && pass.Failed == 0 {
		return StageCached, nil
	}
	return StageFresh, nil
}

type videoSummary struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	WordCount   int       `json:"word_count"`
	FrameCount  int       `json:"frame_count"`
	ProcessedAt time.Time `json:"processed_at"`
}

func (w *worker) writeSummary(logger *slog.Logger, job jobs.Job, result JobResult) {
	summary := videoSummary{
		VideoID:     job.VideoID,
		Title:       job.Title,
		URL:         job.URL,
		WordCount:   result.WordCount,
		FrameCount:  result.FrameCount,
		ProcessedAt: result.ProcessedAt,
	}
	if err := cache.WriteJSON(w.layout.SummaryPath(job.VideoID), summary); err != nil {
		logger.Warn("failed to write per-video summary",
			logging.String(logging.FieldEventType, "summary_write_failed"),
			logging.Error(err),
		)
	}
}

// wrapStageError tags a tool failure with its stage, distinguishing timeouts
// from ordinary non-zero exits.
func wrapStageError(ctx context.Context, stage, operation string, err error) error {
	marker := services.ErrExternalTool
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		marker = services.ErrTimeout
	}
	return services.Wrap(marker, stage, operation, "", err)
}
