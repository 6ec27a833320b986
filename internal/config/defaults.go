package config

const (
	defaultOutputDir           = "~/.local/share/vidmill/processed"
	defaultLogDir              = "~/.local/share/vidmill/logs"
	defaultMaxWorkers          = 4
	defaultFrameInterval       = 5
	defaultModel               = "medium"
	defaultLanguage            = "en"
	defaultDownloadTimeout     = 240
	defaultAudioTimeout        = 240
	defaultTranscribeTimeout   = 600
	defaultFrameCaptureTimeout = 120
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// KnownModels lists the accepted speech-to-text model sizes.
var KnownModels = []string{"tiny", "base", "small", "medium", "large"}

func isKnownModel(model string) bool {
	for _, known := range KnownModels {
		if model == known {
			return true
		}
	}
	return false
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Processing: Processing{
			MaxWorkers:             defaultMaxWorkers,
			FrameInterval:          defaultFrameInterval,
			Model:                  defaultModel,
			Language:               defaultLanguage,
			DownloadTimeout:        defaultDownloadTimeout,
			AudioTimeout:           defaultAudioTimeout,
			TranscribeTimeout:      defaultTranscribeTimeout,
			FrameCaptureTimeout:    defaultFrameCaptureTimeout,
			WriteIndividualSummary: true,
		},
		Tools: Tools{
			YTDLPBinary:   "yt-dlp",
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			UVXBinary:     "uvx",
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
