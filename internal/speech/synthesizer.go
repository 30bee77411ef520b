package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/textdecode"
	"reelsmith/internal/workfolder"
)

const stageName = "speech"

// Provider generates narration and fetches remotely hosted audio.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Synthesizer turns a work folder's description into description.mp3.
type Synthesizer struct {
	provider Provider
	voiceID  string
	format   string
	logger   *slog.Logger
}

// NewSynthesizer wires a synthesizer with a fixed voice and output format.
func NewSynthesizer(provider Provider, voiceID, format string, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		voiceID:  strings.TrimSpace(voiceID),
		format:   strings.ToUpper(strings.TrimSpace(format)),
		logger:   logging.NewComponentLogger(logger, stageName),
	}
}

// Synthesize writes narration audio for folder. A missing description is a
// skip (services.ErrMissingPrerequisite) with no side effects. Provider
// failures are services.ErrIntegration. The audio file is only ever replaced
// atomically, so a failed run never leaves a partial description.mp3.
func (s *Synthesizer) Synthesize(ctx context.Context, folder workfolder.WorkFolder) error {
	ctx = services.WithStage(services.WithFolderID(ctx, folder.ID), stageName)
	logger := logging.WithContext(ctx, s.logger)

	raw, err := os.ReadFile(folder.DescriptionPath())
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("description missing; skipping folder",
			logging.String(logging.FieldEventType, "description_missing"),
		)
		return services.Wrap(services.ErrMissingPrerequisite, stageName, "read description", "description file missing", nil)
	}
	if err != nil {
		return services.Wrap(services.ErrMissingPrerequisite, stageName, "read description", "description unreadable", err)
	}

	decoded := textdecode.Decode(raw)
	text := strings.TrimSpace(decoded.Text)
	if decoded.Lossy {
		logging.WarnWithContext(logger, "description contained undecodable bytes", "description_lossy",
			logging.String("encoding", decoded.Encoding),
			logging.String(logging.FieldImpact, "narration may contain replacement characters"),
			logging.String(logging.FieldErrorHint, "re-upload the description as UTF-8"),
		)
	}
	logger.Debug("description decoded",
		logging.String("encoding", decoded.Encoding),
		logging.Bool("certain", decoded.Certain),
		logging.Int("chars", len([]rune(text))),
	)

	resp, err := s.provider.Generate(ctx, Request{Text: text, VoiceID: s.voiceID, Format: s.format})
	if err != nil {
		return services.Wrap(services.ErrIntegration, stageName, "generate", "speech provider request failed", err)
	}

	var written int64
	switch r := resp.(type) {
	case URLResponse:
		logger.Debug("downloading narration", logging.String("url", r.URL))
		written, err = s.persist(folder, func(w io.Writer) error {
			_, err := s.provider.Download(ctx, r.URL, w)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrIntegration, stageName, "download", "fetch remote audio", err)
		}
	case InlineAudioResponse:
		written, err = s.persist(folder, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(r.Audio))
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrIntegration, stageName, "persist", "write inline audio", err)
		}
	default:
		return services.Wrap(services.ErrIntegration, stageName, "decode", fmt.Sprintf("unhandled response %T", resp), nil)
	}

	logger.Info("narration saved",
		logging.String("path", folder.AudioPath()),
		logging.Int64("bytes", written),
		logging.String(logging.FieldEventType, "audio_saved"),
	)
	return nil
}

func (s *Synthesizer) persist(folder workfolder.WorkFolder, fill func(io.Writer) error) (int64, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(fill(pw))
	}()
	n, err := fileutil.WriteAtomic(folder.AudioPath(), pr, 0o644)
	_ = pr.CloseWithError(err)
	return n, err
}
