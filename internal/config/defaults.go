package config

import "murmur/internal/language"

const (
	defaultLogDir           = "~/.local/share/murmur/logs"
	defaultOutputDir        = "~/transcripts"
	defaultModelCacheDir    = "~/.cache/murmur/models"
	defaultWatchDir         = "~/transcripts/inbox"
	defaultMaxCharsPerChunk = 80
	defaultMaxChunkSeconds  = 6.0
	defaultFormat           = "txt"
	defaultTimestampStyle   = "none"
	defaultEngineBinary     = "whisper-cli"
	defaultFFprobeBinary    = "ffprobe"
	defaultEngineModel      = "base"
	defaultModelBaseURL     = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	defaultDownloadTimeout  = 600
	defaultPollInterval     = 5
	defaultErrorRetry       = 10
	defaultSettleSeconds    = 2
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:        defaultLogDir,
			OutputDir:     defaultOutputDir,
			ModelCacheDir: defaultModelCacheDir,
			WatchDir:      defaultWatchDir,
		},
		Transcription: Transcription{
			MaxCharsPerChunk: defaultMaxCharsPerChunk,
			MaxChunkSeconds:  defaultMaxChunkSeconds,
			Format:           defaultFormat,
			Locale:           language.SystemDefault(),
			TimestampStyle:   defaultTimestampStyle,
		},
		Engine: Engine{
			Binary:          defaultEngineBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			Model:           defaultEngineModel,
			ModelBaseURL:    defaultModelBaseURL,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetry,
		},
		Watch: Watch{
			SettleSeconds: defaultSettleSeconds,
			Extensions:    []string{".wav", ".mp3", ".m4a", ".flac", ".ogg", ".opus"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
