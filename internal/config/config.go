package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	UploadDir string `toml:"upload_dir"`
	ReelsDir  string `toml:"reels_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
}

// Speech contains configuration for the text-to-speech provider.
type Speech struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	VoiceID        string `toml:"voice_id"`
	Format         string `toml:"format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Encoder contains configuration for the ffmpeg/ffprobe invocations.
type Encoder struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	AudioCodec    string `toml:"audio_codec"`
	PixelFormat   string `toml:"pixel_format"`
}

// Workflow contains configuration for the folder-queue poll loop.
type Workflow struct {
	PollInterval int `toml:"poll_interval"`
	// MaxAttempts moves a folder to the terminal failed state after this many
	// failed cycles. Zero retries forever.
	MaxAttempts        int  `toml:"max_attempts"`
	WatchUploads       bool `toml:"watch_uploads"`
	StagingMaxAgeHours int  `toml:"staging_max_age_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Reelsmith.
//
// Configuration sections by subsystem:
//   - Paths: upload root, reel output, state and log directories, API bind address
//   - Speech: narration provider endpoint, credentials, voice and format
//   - Encoder: ffmpeg/ffprobe binaries and output codecs
//   - Workflow: poll interval, retry ceiling, upload watching, staging cleanup
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Speech   Speech   `toml:"speech"`
	Encoder  Encoder  `toml:"encoder"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv populates unset environment variables from .env files in the
// working directory. Missing files are ignored.
func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		_ = godotenv.Load(name)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.ReelsDir, c.Paths.StateDir, c.Paths.LogDir, c.StagingDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the location of the append-only done ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "done.txt")
}

// DatabasePath returns the location of the attempt store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "reelsmith.db")
}

// StagingDir returns the parent directory for per-folder scratch directories.
func (c *Config) StagingDir() string {
	return filepath.Join(c.Paths.StateDir, "staging")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "reelsmithd.lock")
}

// FFmpegBinary returns the ffmpeg executable used for reel assembly.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Encoder.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.Encoder.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for audio inspection.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Encoder.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.Encoder.FFprobeBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
