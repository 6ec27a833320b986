package whisper

// Config captures runtime settings for speech-to-text operations.
type Config struct {
	// Model is the model size to load (tiny, base, small, medium, large).
	Model string
	// Language is the transcription language hint (ISO 639-1).
	Language string
	// UVXBinary overrides the uvx launcher used to run the whisper CLI.
	UVXBinary string
}

// Constants for the whisper CLI invocation.
const (
	DefaultModel    = "medium"
	DefaultLanguage = "en"
	UVXCommand      = "uvx"
	WhisperPackage  = "openai-whisper"
	WhisperCommand  = "whisper"
	OutputFormat    = "json"
)
