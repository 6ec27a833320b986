package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidmill/internal/cache"
	"vidmill/internal/config"
	"vidmill/internal/deps"
	"vidmill/internal/history"
	"vidmill/internal/jobs"
	"vidmill/internal/pipeline"
	"vidmill/internal/report"
	"vidmill/internal/runlock"
	"vidmill/internal/services"
	"vidmill/internal/services/ffmpeg"
	"vidmill/internal/services/whisper"
	"vidmill/internal/services/ytdlp"
)

// testRunLimit caps --test runs to a quick smoke-sized batch.
const testRunLimit = 2

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag        string
		outputDirFlag     string
		maxWorkersFlag    int
		frameIntervalFlag int
		modelFlag         string
		languageFlag      string
		testFlag          bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process the configured video list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyProcessOverrides(cmd, cfg, sourceFlag, outputDirFlag, maxWorkersFlag, frameIntervalFlag, modelFlag, languageFlag)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			return runProcess(cmd, cfg, testFlag)
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "video-source", "", "Path to the JSON video list")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Cache root for downloaded and derived artifacts")
	cmd.Flags().IntVar(&maxWorkersFlag, "max-workers", 0, "Upper bound on parallel workers")
	cmd.Flags().IntVar(&frameIntervalFlag, "frame-interval", 0, "Fallback keyframe interval in seconds")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Whisper model size")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Transcription language hint")
	cmd.Flags().BoolVar(&testFlag, "test", false, fmt.Sprintf("Process only the first %d valid videos", testRunLimit))

	return cmd
}

func applyProcessOverrides(cmd *cobra.Command, cfg *config.Config, source, outputDir string, maxWorkers, frameInterval int, model, language string) {
	flags := cmd.Flags()
	if flags.Changed("video-source") {
		cfg.Processing.VideoSource = source
	}
	if flags.Changed("output-dir") {
		cfg.Paths.OutputDir = outputDir
	}
	if flags.Changed("max-workers") {
		cfg.Processing.MaxWorkers = maxWorkers
	}
	if flags.Changed("frame-interval") {
		cfg.Processing.FrameInterval = frameInterval
	}
	if flags.Changed("model") {
		cfg.Processing.Model = model
	}
	if flags.Changed("language") {
		cfg.Processing.Language = language
	}
}

func runProcess(cmd *cobra.Command, cfg *config.Config, testRun bool) error {
	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg)))
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s (run `vidmill deps` for details)", strings.Join(missing, ", "))
	}

	layout := cache.NewLayout(cfg.Paths.OutputDir)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("prepare output directories: %w", err)
	}

	lock := runlock.New(layout.LockPath())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.Warn("failed to release run lock", "error", releaseErr)
		}
	}()

	loaded, err := jobs.LoadSource(cfg.Processing.VideoSource)
	if err != nil {
		return fmt.Errorf("load video source: %w", err)
	}

	valid, skipped := jobs.Partition(loaded)
	if testRun && len(valid) > testRunLimit {
		logger.Info("test run, truncating job list", "limit", testRunLimit, "total", len(valid))
		valid = valid[:testRunLimit]
	}
	if len(valid) == 0 {
		return fmt.Errorf("no valid videos in %s", cfg.Processing.VideoSource)
	}

	skippedResults := make([]pipeline.JobResult, 0, len(skipped))
	for _, job := range skipped {
		reason := "duplicate video_id"
		if !job.Valid() {
			reason = "missing video_id or url"
		}
		logger.Warn("skipping invalid job entry", "video_id", job.VideoID, "reason", reason)
		skippedResults = append(skippedResults, pipeline.SkippedResult(job, reason))
	}

	// One run id correlates logs, the processing log, and the history row.
	runID := uuid.NewString()
	runCtx := services.WithRunID(cmd.Context(), runID)

	settings := pipeline.SettingsFromConfig(cfg)
	pool := pipeline.NewPool(settings, layout, pipeline.Deps{
		Fetcher: ytdlp.NewCLI(ytdlp.WithBinary(cfg.Tools.YTDLPBinary)),
		Audio:   ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Tools.FFmpegBinary)),
		Grabber: ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Tools.FFmpegBinary)),
		Prober:  pipeline.FFprobeProber{Binary: cfg.Tools.FFprobeBinary},
		Loader: pipeline.WhisperLoader(whisper.Config{
			Model:     cfg.Processing.Model,
			Language:  cfg.Processing.Language,
			UVXBinary: cfg.Tools.UVXBinary,
		}),
	}, logger)

	started := time.Now()
	results := pool.Run(runCtx, valid)
	results = append(results, skippedResults...)

	runLog := report.NewRunLog(runID, cfg.Processing.VideoSource, settings, started, results)
	logPath, err := report.WriteLog(layout, runLog)
	if err != nil {
		return err
	}
	reportPath, err := report.WriteMarkdown(layout, runLog)
	if err != nil {
		return err
	}

	if cfg.History.Enabled {
		if err := recordHistory(runCtx, cfg, runLog); err != nil {
			logger.Warn("failed to record run history", "error", err)
		}
	}

	printRunSummary(cmd, runLog, logPath, reportPath)
	return cmd.Context().Err()
}

func recordHistory(ctx context.Context, cfg *config.Config, runLog report.RunLog) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(ctx, runLog)
}

func printRunSummary(cmd *cobra.Command, runLog report.RunLog, logPath, reportPath string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Run Summary", colorize) {
		fmt.Fprintln(out, line)
	}
	kind := statusOK
	if runLog.Totals.Failed > 0 {
		kind = statusWarn
	}
	if runLog.Totals.Successful == 0 {
		kind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Videos", kind,
		fmt.Sprintf("%d successful, %d failed, %d skipped", runLog.Totals.Successful, runLog.Totals.Failed, runLog.Totals.Skipped), colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo,
		runLog.CompletedAt.Sub(runLog.StartedAt).Round(time.Second).String(), colorize))
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(runLog.Videos))
	for _, video := range runLog.Videos {
		detail := video.Error
		if detail == "" && video.FailedStage != "" {
			detail = video.FailedStage
		}
		rows = append(rows, []string{
			video.VideoID,
			string(video.Outcome),
			strconv.Itoa(video.WordCount),
			strconv.Itoa(video.FrameCount),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Video", "Status", "Words", "Frames", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Processing log: %s\n", logPath)
	fmt.Fprintf(out, "Summary report: %s\n", reportPath)
}
