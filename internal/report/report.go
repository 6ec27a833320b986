// Package report aggregates per-job results into the run artifacts: the
// machine-readable processing log and the human-readable markdown summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidmill/internal/cache"
	"vidmill/internal/pipeline"
)

// Totals counts job outcomes for one run.
type Totals struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// RunLog is the persisted record of one complete run. The reporter is the
// only writer of run-level artifacts; workers never touch them.
type RunLog struct {
	RunID         string               `json:"run_id"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   time.Time            `json:"completed_at"`
	Source        string               `json:"source"`
	Model         string               `json:"model"`
	MaxWorkers    int                  `json:"max_workers"`
	FrameInterval int                  `json:"frame_interval"`
	Totals        Totals               `json:"totals"`
	Videos        []pipeline.JobResult `json:"videos"`
}

// NewRunLog assembles the run record from collected results. The caller
// supplies the run identifier so logs, history, and artifacts all correlate;
// an empty id gets a fresh one.
func NewRunLog(runID, source string, settings pipeline.Settings, startedAt time.Time, results []pipeline.JobResult) RunLog {
	if runID == "" {
		runID = uuid.NewString()
	}
	return RunLog{
		RunID:         runID,
		StartedAt:     startedAt.UTC(),
		CompletedAt:   time.Now().UTC(),
		Source:        source,
		Model:         settings.Model,
		MaxWorkers:    settings.MaxWorkers,
		FrameInterval: settings.FrameInterval,
		Totals:        Tally(results),
		Videos:        results,
	}
}

// Tally counts outcomes across a result set.
func Tally(results []pipeline.JobResult) Totals {
	totals := Totals{Total: len(results)}
	for _, result := range results {
		switch result.Outcome {
		case pipeline.OutcomeSuccess:
			totals.Successful++
		case pipeline.OutcomeFailed:
			totals.Failed++
		case pipeline.OutcomeSkipped:
			totals.Skipped++
		}
	}
	return totals
}

// WriteLog persists the processing log at the cache root and returns its
// path. The write is atomic so a crashed run never leaves a torn log behind.
func WriteLog(layout cache.Layout, runLog RunLog) (string, error) {
	path := layout.RunLogPath()
	if err := cache.WriteJSON(path, runLog); err != nil {
		return "", fmt.Errorf("write processing log: %w", err)
	}
	return path, nil
}

// WriteMarkdown renders the summary into reports/ and returns its path.
func WriteMarkdown(layout cache.Layout, runLog RunLog) (string, error) {
	stamp := runLog.CompletedAt.Format("20060102_150405")
	path := layout.ReportPath(stamp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Markdown(runLog)), 0o644); err != nil {
		return "", fmt.Errorf("write summary report: %w", err)
	}
	return path, nil
}

// Markdown renders the run summary document.
func Markdown(runLog RunLog) string {
	var b strings.Builder

	b.WriteString("# Video Processing Summary\n\n")
	fmt.Fprintf(&b, "- **Run:** %s\n", runLog.RunID)
	fmt.Fprintf(&b, "- **Started:** %s\n", runLog.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Completed:** %s\n", runLog.CompletedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Source:** %s\n", runLog.Source)
	fmt.Fprintf(&b, "- **Model:** %s\n", runLog.Model)
	fmt.Fprintf(&b, "- **Workers:** %d\n", runLog.MaxWorkers)
	fmt.Fprintf(&b, "- **Frame interval:** %ds\n\n", runLog.FrameInterval)

	b.WriteString("## Totals\n\n")
	b.WriteString("| Total | Successful | Failed | Skipped |\n")
	b.WriteString("|------:|-----------:|-------:|--------:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n\n", runLog.Totals.Total, runLog.Totals.Successful, runLog.Totals.Failed, runLog.Totals.Skipped)

	b.WriteString("## Videos\n\n")
	b.WriteString("| Video | Title | Status | Words | Frames |\n")
	b.WriteString("|-------|-------|--------|------:|-------:|\n")
	for _, video := range runLog.Videos {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d |\n",
			video.VideoID, markdownCell(video.Title), video.Outcome, video.WordCount, video.FrameCount)
	}

	failures := failedVideos(runLog.Videos)
	if len(failures) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, video := range failures {
			stage := video.FailedStage
			if stage == "" {
				stage = "dispatch"
			}
			fmt.Fprintf(&b, "- `%s` (%s): %s\n", video.VideoID, stage, video.Error)
		}
	}

	return b.String()
}

func failedVideos(videos []pipeline.JobResult) []pipeline.JobResult {
	var failed []pipeline.JobResult
	for _, video := range videos {
		if video.Outcome == pipeline.OutcomeFailed {
			failed = append(failed, video)
		}
	}
	return failed
}

// markdownCell keeps titles from breaking table rows.
func markdownCell(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), "|", "\\|")
}
