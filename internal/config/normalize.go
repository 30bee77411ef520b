package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSpeech()
	c.normalizeEncoder()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReelsDir) == "" {
		c.Paths.ReelsDir = defaultReelsDir
	}
	if c.Paths.ReelsDir, err = expandPath(c.Paths.ReelsDir); err != nil {
		return fmt.Errorf("paths.reels_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeSpeech() {
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.APIKey == "" {
		if value, ok := os.LookupEnv("REELSMITH_SPEECH_API_KEY"); ok {
			c.Speech.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("MURF_API_KEY"); ok {
			c.Speech.APIKey = strings.TrimSpace(value)
		}
	}
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultSpeechBaseURL
	}
	c.Speech.VoiceID = strings.TrimSpace(c.Speech.VoiceID)
	if c.Speech.VoiceID == "" {
		c.Speech.VoiceID = defaultSpeechVoiceID
	}
	c.Speech.Format = strings.ToUpper(strings.TrimSpace(c.Speech.Format))
	if c.Speech.Format == "" {
		c.Speech.Format = defaultSpeechFormat
	}
	if c.Speech.TimeoutSeconds < 0 {
		c.Speech.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		c.Encoder.FFprobeBinary = defaultFFprobeBinary
	}
	c.Encoder.VideoCodec = strings.TrimSpace(c.Encoder.VideoCodec)
	if c.Encoder.VideoCodec == "" {
		c.Encoder.VideoCodec = defaultVideoCodec
	}
	c.Encoder.AudioCodec = strings.TrimSpace(c.Encoder.AudioCodec)
	if c.Encoder.AudioCodec == "" {
		c.Encoder.AudioCodec = defaultAudioCodec
	}
	c.Encoder.PixelFormat = strings.TrimSpace(c.Encoder.PixelFormat)
	if c.Encoder.PixelFormat == "" {
		c.Encoder.PixelFormat = defaultPixelFormat
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxAttempts < 0 {
		c.Workflow.MaxAttempts = 0
	}
	if c.Workflow.StagingMaxAgeHours < 0 {
		c.Workflow.StagingMaxAgeHours = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
