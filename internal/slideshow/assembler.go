package slideshow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/workfolder"
)

const stageName = "slideshow"

// CommandRunner executes an external tool, returning an error that carries
// its diagnostic output on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Result reports a produced reel.
type Result struct {
	OutputPath      string
	Images          int
	AudioSeconds    float64
	PerImageSeconds float64
}

// Assembler renders a work folder's images and narration into a reel.
type Assembler struct {
	ffmpeg      string
	ffprobe     string
	videoCodec  string
	audioCodec  string
	pixelFormat string
	stagingDir  string
	reelsDir    string
	logger      *slog.Logger
	run         CommandRunner
}

// NewAssembler constructs an assembler from configuration.
func NewAssembler(cfg *config.Config, logger *slog.Logger) *Assembler {
	return &Assembler{
		ffmpeg:      cfg.FFmpegBinary(),
		ffprobe:     cfg.FFprobeBinary(),
		videoCodec:  cfg.Encoder.VideoCodec,
		audioCodec:  cfg.Encoder.AudioCodec,
		pixelFormat: cfg.Encoder.PixelFormat,
		stagingDir:  cfg.StagingDir(),
		reelsDir:    cfg.Paths.ReelsDir,
		logger:      logging.NewComponentLogger(logger, stageName),
		run:         defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (a *Assembler) WithCommandRunner(r CommandRunner) {
	if a != nil && r != nil {
		a.run = r
	}
}

// OutputPath returns where the reel for folderID is written.
func (a *Assembler) OutputPath(folderID string) string {
	return filepath.Join(a.reelsDir, folderID+".mp4")
}

// Assemble produces <reels_dir>/<id>.mp4 for folder. Missing narration or an
// empty image set is a skip and the encoder is never started. The scratch
// directory is removed on every path out.
func (a *Assembler) Assemble(ctx context.Context, folder workfolder.WorkFolder) (Result, error) {
	ctx = services.WithStage(services.WithFolderID(ctx, folder.ID), stageName)
	logger := logging.WithContext(ctx, a.logger)

	if !folder.HasAudio() {
		logger.Info("narration missing; skipping folder",
			logging.String(logging.FieldEventType, "audio_missing"),
		)
		return Result{}, services.Wrap(services.ErrMissingPrerequisite, stageName, "check audio", "narration audio missing", nil)
	}

	images, err := folder.Images()
	if err != nil {
		return Result{}, services.Wrap(services.ErrMissingPrerequisite, stageName, "list images", "", err)
	}
	if images.Len() == 0 {
		logger.Info("no images; skipping folder",
			logging.String(logging.FieldEventType, "images_missing"),
		)
		return Result{}, services.Wrap(services.ErrMissingPrerequisite, stageName, "list images", "no png/jpg/jpeg images", nil)
	}

	audioSeconds, err := probeDuration(ctx, a.ffprobe, folder.AudioPath())
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "ffprobe", "measure narration", err)
	}
	per, err := PerImageDuration(audioSeconds, images.Len())
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "plan", "", err)
	}

	if err := os.MkdirAll(a.stagingDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "stage", "create staging root", err)
	}
	scratch, err := os.MkdirTemp(a.stagingDir, folder.ID+"-*")
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "stage", "create scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.WarnWithContext(logger, "scratch cleanup failed", "scratch_cleanup_failed",
				logging.String("path", scratch),
				logging.Error(err),
				logging.String(logging.FieldImpact, "scratch directory remains until staging cleanup"),
			)
		}
	}()

	staged := make([]string, 0, images.Len())
	for i, src := range images.Paths() {
		name := StagedName(i, src)
		if err := fileutil.CopyFile(src, filepath.Join(scratch, name)); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, stageName, "stage", "copy "+filepath.Base(src), err)
		}
		staged = append(staged, name)
	}

	script := filepath.Join(scratch, ScriptName)
	if err := os.WriteFile(script, []byte(BuildManifest(staged, per).Render()), 0o644); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "stage", "write concat script", err)
	}

	if err := os.MkdirAll(a.reelsDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "output", "create reels directory", err)
	}
	finalPath := a.OutputPath(folder.ID)
	// The temporary name keeps the .mp4 extension so ffmpeg picks the muxer.
	tmpPath := filepath.Join(a.reelsDir, "."+folder.ID+".partial.mp4")

	logger.Debug("executing ffmpeg",
		logging.Int("images", images.Len()),
		logging.Float64("audio_seconds", audioSeconds),
		logging.Float64("per_image_seconds", per),
	)
	if err := a.run(ctx, a.ffmpeg, a.ffmpegArgs(script, folder.AudioPath(), tmpPath)...); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "ffmpeg", "encode reel", err)
	}
	if info, err := os.Stat(tmpPath); err != nil || info.Size() == 0 {
		_ = os.Remove(tmpPath)
		if err == nil {
			err = errors.New("empty output")
		}
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "ffmpeg", "encoder produced no output", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "output", "move reel into place", err)
	}

	logger.Info("reel assembled",
		logging.String("output", finalPath),
		logging.Int("images", images.Len()),
		logging.Float64("audio_seconds", audioSeconds),
		logging.String(logging.FieldEventType, "reel_assembled"),
	)
	return Result{
		OutputPath:      finalPath,
		Images:          images.Len(),
		AudioSeconds:    audioSeconds,
		PerImageSeconds: per,
	}, nil
}

func (a *Assembler) ffmpegArgs(script, audio, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", script,
		"-i", audio,
		"-c:v", a.videoCodec,
		"-c:a", a.audioCodec,
		"-pix_fmt", a.pixelFormat,
		"-shortest",
		output,
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(strings.TrimSpace(string(output)), 2048))
	}
	return nil
}

// tail keeps the last n bytes of ffmpeg output, where the actual error is.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
