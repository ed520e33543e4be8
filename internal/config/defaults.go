package config

const (
	defaultStagingDir = "~/.local/share/distill/staging"
	defaultLogDir     = "~/.local/share/distill/logs"
	defaultDataDir    = "~/.local/share/distill/data"

	defaultFFprobeBinary = "ffprobe"
	defaultFFmpegBinary  = "ffmpeg"

	defaultMaxChunkSeconds = 600
	defaultOverlapSeconds  = 30
	defaultMinChunkSeconds = 60

	defaultTranscriptionBaseURL = "http://localhost:8000/v1"
	defaultTranscriptionModel   = "whisper-1"
	defaultTranscriptionWorkers = 3
	defaultTranscriptionTimeout = 300
	defaultTrimStrategy         = "proportional"

	defaultSynthesisBaseURL = "http://localhost:11434/v1"
	defaultSynthesisModel   = "llama3.1:8b"
	defaultSynthesisBudget  = 15000
	defaultTemplate         = "basic_summary"
	defaultSynthesisWorkers = 2
	defaultSynthesisTimeout = 300

	defaultMaxRetries       = 3
	defaultRetryBaseDelay   = 1.0
	defaultRetryMultiplier  = 2.0
	defaultRetryMaxDelay    = 30.0
	defaultFailureThreshold = 0.2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			DataDir:    defaultDataDir,
		},
		Media: Media{
			FFprobeBinary: defaultFFprobeBinary,
			FFmpegBinary:  defaultFFmpegBinary,
		},
		Chunking: Chunking{
			MaxChunkSeconds: defaultMaxChunkSeconds,
			OverlapSeconds:  defaultOverlapSeconds,
			MinChunkSeconds: defaultMinChunkSeconds,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			Workers:        defaultTranscriptionWorkers,
			TimeoutSeconds: defaultTranscriptionTimeout,
			MaxRetries:     defaultMaxRetries,
			TrimStrategy:   defaultTrimStrategy,
		},
		Synthesis: Synthesis{
			BaseURL:        defaultSynthesisBaseURL,
			Model:          defaultSynthesisModel,
			Template:       defaultTemplate,
			BudgetChars:    defaultSynthesisBudget,
			Workers:        defaultSynthesisWorkers,
			TimeoutSeconds: defaultSynthesisTimeout,
			MaxRetries:     defaultMaxRetries,
		},
		Retry: Retry{
			BaseDelaySeconds: defaultRetryBaseDelay,
			Multiplier:       defaultRetryMultiplier,
			MaxDelaySeconds:  defaultRetryMaxDelay,
		},
		Pipeline: Pipeline{
			FailureThreshold: defaultFailureThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
