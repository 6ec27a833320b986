package pipeline

import (
	"time"

	"vidmill/internal/config"
)

// Settings carries the per-run pipeline parameters. The consolidated
// pipeline is parameterized here instead of existing as near-duplicate
// variants with different hardcoded defaults.
type Settings struct {
	MaxWorkers             int
	FrameInterval          int
	Model                  string
	Language               string
	DownloadTimeout        time.Duration
	AudioTimeout           time.Duration
	TranscribeTimeout      time.Duration
	FrameCaptureTimeout    time.Duration
	WriteIndividualSummary bool
}

// SettingsFromConfig converts the [processing] config section into runtime
// settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	p := cfg.Processing
	return Settings{
		MaxWorkers:             p.MaxWorkers,
		FrameInterval:          p.FrameInterval,
		Model:                  p.Model,
		Language:               p.Language,
		DownloadTimeout:        time.Duration(p.DownloadTimeout) * time.Second,
		AudioTimeout:           time.Duration(p.AudioTimeout) * time.Second,
		TranscribeTimeout:      time.Duration(p.TranscribeTimeout) * time.Second,
		FrameCaptureTimeout:    time.Duration(p.FrameCaptureTimeout) * time.Second,
		WriteIndividualSummary: p.WriteIndividualSummary,
	}
}
