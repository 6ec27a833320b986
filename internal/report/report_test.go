package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"vidmill/internal/cache"
	"vidmill/internal/pipeline"
)

func sampleResults() []pipeline.JobResult {
	return []pipeline.JobResult{
		{
			VideoID:    "vid-a",
			Title:      "First | Video",
			URL:        "https://example.com/v/a",
			Outcome:    pipeline.OutcomeSuccess,
			WordCount:  120,
			FrameCount: 9,
			Stages: pipeline.StageStatuses{
				Download:   pipeline.StageFresh,
				Audio:      pipeline.StageFresh,
				Transcript: pipeline.StageFresh,
				Frames:     pipeline.StageFresh,
			},
		},
		{
			VideoID:     "vid-b",
			Title:       "Second Video",
			URL:         "https://example.com/v/b",
			Outcome:     pipeline.OutcomeFailed,
			FailedStage: pipeline.StageDownload,
			Error:       "download: yt-dlp: ERROR: video unavailable",
			Stages:      pipeline.StageStatuses{Download: pipeline.StageFailed},
		},
		{
			VideoID: "vid-c",
			Outcome: pipeline.OutcomeSkipped,
			Error:   "missing url",
		},
	}
}

func TestTally(t *testing.T) {
	totals := Tally(sampleResults())
	want := Totals{Total: 3, Successful: 1, Failed: 1, Skipped: 1}
	if totals != want {
		t.Fatalf("Tally = %+v, want %+v", totals, want)
	}
}

func TestNewRunLog(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	settings := pipeline.Settings{Model: "medium", MaxWorkers: 4, FrameInterval: 5}

	runLog := NewRunLog("", "videos.json", settings, started, sampleResults())
	if runLog.RunID == "" {
		t.Error("RunID is empty, want a generated identifier")
	}
	if withID := NewRunLog("run-123", "videos.json", settings, started, sampleResults()); withID.RunID != "run-123" {
		t.Errorf("RunID = %q, want caller-supplied run-123", withID.RunID)
	}
	if runLog.Model != "medium" || runLog.MaxWorkers != 4 || runLog.FrameInterval != 5 {
		t.Errorf("run parameters = %q/%d/%d, want medium/4/5", runLog.Model, runLog.MaxWorkers, runLog.FrameInterval)
	}
	if runLog.CompletedAt.Before(runLog.StartedAt) {
		t.Errorf("CompletedAt %v precedes StartedAt %v", runLog.CompletedAt, runLog.StartedAt)
	}
	if runLog.Totals.Total != 3 {
		t.Errorf("Totals.Total = %d, want 3", runLog.Totals.Total)
	}
}

func TestWriteLogRoundTrip(t *testing.T) {
	layout := cache.NewLayout(t.TempDir())
	runLog := NewRunLog("", "videos.json", pipeline.Settings{Model: "small", MaxWorkers: 2, FrameInterval: 10}, time.Now(), sampleResults())

	path, err := WriteLog(layout, runLog)
	if err != nil {
		t.Fatalf("WriteLog: %v", err)
	}
	if path != layout.RunLogPath() {
		t.Errorf("path = %s, want %s", path, layout.RunLogPath())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var loaded RunLog
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("unmarshal processing log: %v", err)
	}
	if loaded.RunID != runLog.RunID {
		t.Errorf("RunID = %q, want %q", loaded.RunID, runLog.RunID)
	}
	if len(loaded.Videos) != 3 {
		t.Fatalf("got %d videos, want 3", len(loaded.Videos))
	}
	if loaded.Videos[1].FailedStage != pipeline.StageDownload {
		t.Errorf("Videos[1].FailedStage = %q, want %q", loaded.Videos[1].FailedStage, pipeline.StageDownload)
	}
}

func TestWriteMarkdown(t *testing.T) {
	layout := cache.NewLayout(t.TempDir())
	runLog := NewRunLog("", "videos.json", pipeline.Settings{Model: "medium", MaxWorkers: 4, FrameInterval: 5}, time.Now(), sampleResults())

	path, err := WriteMarkdown(layout, runLog)
	if err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if !strings.Contains(path, "processing_summary_") {
		t.Errorf("path = %s, want a timestamped summary name", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	content := string(raw)
	for _, want := range []string{
		"# Video Processing Summary",
		"| 3 | 1 | 1 | 1 |",
		"First \\| Video",
		"## Failures",
		"`vid-b` (download)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
