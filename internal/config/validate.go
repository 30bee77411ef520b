package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if filepath.Clean(c.Paths.UploadDir) == filepath.Clean(c.Paths.ReelsDir) {
		return errors.New("paths.reels_dir must differ from paths.upload_dir")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	parsed, err := url.Parse(c.Speech.BaseURL)
	if err != nil {
		return fmt.Errorf("speech.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("speech.base_url must be an http(s) URL, got %q", c.Speech.BaseURL)
	}
	if strings.TrimSpace(c.Speech.VoiceID) == "" {
		return errors.New("speech.voice_id must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollInterval <= 0 {
		return errors.New("workflow.poll_interval must be positive")
	}
	return nil
}
