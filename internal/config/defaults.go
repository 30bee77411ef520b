package config

import "time"

const (
	defaultConfigPath         = "~/.config/reelsmith/config.toml"
	defaultUploadDir          = "user_uploads"
	defaultReelsDir           = "static/reels"
	defaultStateDir           = "~/.local/share/reelsmith"
	defaultLogDirName         = "logs"
	defaultSpeechBaseURL      = "https://api.murf.ai/v1/speech/generate"
	defaultSpeechVoiceID      = "en-IN-alia"
	defaultSpeechFormat       = "MP3"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultVideoCodec         = "libx264"
	defaultAudioCodec         = "aac"
	defaultPixelFormat        = "yuv420p"
	defaultPollInterval       = 5
	defaultStagingMaxAgeHours = 24
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			ReelsDir:  defaultReelsDir,
			StateDir:  defaultStateDir,
		},
		Speech: Speech{
			BaseURL: defaultSpeechBaseURL,
			VoiceID: defaultSpeechVoiceID,
			Format:  defaultSpeechFormat,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			PixelFormat:   defaultPixelFormat,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			StagingMaxAgeHours: defaultStagingMaxAgeHours,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

// PollInterval returns the fixed delay between queue cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Workflow.PollInterval) * time.Second
}

// SpeechTimeout returns the provider request timeout. Zero disables the timeout.
func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.Speech.TimeoutSeconds) * time.Second
}

// StagingMaxAge returns how old an abandoned scratch directory must be before removal.
func (c *Config) StagingMaxAge() time.Duration {
	return time.Duration(c.Workflow.StagingMaxAgeHours) * time.Hour
}
