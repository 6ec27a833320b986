package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProcessing()
	c.normalizeTools()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProcessing() {
	p := &c.Processing
	p.VideoSource = strings.TrimSpace(p.VideoSource)
	if p.MaxWorkers == 0 {
		p.MaxWorkers = defaultMaxWorkers
	}
	if p.FrameInterval == 0 {
		p.FrameInterval = defaultFrameInterval
	}
	p.Model = strings.ToLower(strings.TrimSpace(p.Model))
	if p.Model == "" {
		p.Model = defaultModel
	}
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if p.Language == "" {
		p.Language = defaultLanguage
	}
	if p.DownloadTimeout <= 0 {
		p.DownloadTimeout = defaultDownloadTimeout
	}
	if p.AudioTimeout <= 0 {
		p.AudioTimeout = defaultAudioTimeout
	}
	if p.TranscribeTimeout <= 0 {
		p.TranscribeTimeout = defaultTranscribeTimeout
	}
	if p.FrameCaptureTimeout <= 0 {
		p.FrameCaptureTimeout = defaultFrameCaptureTimeout
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.YTDLPBinary) == "" {
		c.Tools.YTDLPBinary = "yt-dlp"
	}
	if strings.TrimSpace(c.Tools.FFmpegBinary) == "" {
		c.Tools.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(c.Tools.FFprobeBinary) == "" {
		c.Tools.FFprobeBinary = "ffprobe"
	}
	if strings.TrimSpace(c.Tools.UVXBinary) == "" {
		c.Tools.UVXBinary = "uvx"
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.LogDir, "history.db")
		return nil
	}
	expanded, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
