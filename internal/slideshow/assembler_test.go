package slideshow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/slideshow"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/workfolder"
)

type recordedRun struct {
	name   string
	args   []string
	script string
	staged []string
}

func stubProbe(t *testing.T, seconds float64) {
	t.Helper()
	restore := slideshow.SetProbeForTests(func(context.Context, string, string) (float64, error) {
		return seconds, nil
	})
	t.Cleanup(restore)
}

func recordingRunner(rec *recordedRun, fail error) slideshow.CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		rec.name = name
		rec.args = append([]string(nil), args...)
		for i, arg := range args {
			if arg == "-i" && strings.HasSuffix(args[i+1], slideshow.ScriptName) {
				data, _ := os.ReadFile(args[i+1])
				rec.script = string(data)
				entries, _ := os.ReadDir(filepath.Dir(args[i+1]))
				for _, e := range entries {
					rec.staged = append(rec.staged, e.Name())
				}
				break
			}
		}
		if fail != nil {
			return fail
		}
		return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	}
}

func setup(t *testing.T, images ...string) (*config.Config, workfolder.WorkFolder, *slideshow.Assembler) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	testsupport.WriteWorkFolder(t, cfg.Paths.UploadDir, "f1", "text", images...)
	folder := workfolder.New(cfg.Paths.UploadDir, "f1")
	return cfg, folder, slideshow.NewAssembler(cfg, logging.NewNop())
}

func writeAudio(t *testing.T, folder workfolder.WorkFolder) {
	t.Helper()
	if err := os.WriteFile(folder.AudioPath(), []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertStagingEmpty(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.StagingDir())
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch directories left behind: %d", len(entries))
	}
}

func TestAssembleProducesReel(t *testing.T) {
	cfg, folder, assembler := setup(t, "b.png", "a.jpg", "c.jpeg")
	writeAudio(t, folder)
	stubProbe(t, 9.0)

	var rec recordedRun
	assembler.WithCommandRunner(recordingRunner(&rec, nil))

	result, err := assembler.Assemble(context.Background(), folder)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := filepath.Join(cfg.Paths.ReelsDir, "f1.mp4")
	if result.OutputPath != want || result.PerImageSeconds != 3.0 || result.Images != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected reel at %s: %v", want, err)
	}

	wantScript := "file 'img000.jpg'\nduration 3\nfile 'img001.png'\nduration 3\nfile 'img002.jpeg'\nduration 3\nfile 'img002.jpeg'\n"
	if rec.script != wantScript {
		t.Fatalf("script = %q", rec.script)
	}
	if strings.Join(rec.staged, ",") != "img000.jpg,img001.png,img002.jpeg,input.txt" {
		t.Fatalf("staged = %v", rec.staged)
	}

	if rec.name != "ffmpeg" {
		t.Fatalf("binary = %s", rec.name)
	}
	args := strings.Join(rec.args, " ")
	for _, fragment := range []string{"-y -f concat -safe 0 -i ", "-c:v libx264 -c:a aac -pix_fmt yuv420p -shortest", folder.AudioPath()} {
		if !strings.Contains(args, fragment) {
			t.Fatalf("args %q missing %q", args, fragment)
		}
	}
	assertStagingEmpty(t, cfg)
}

func TestAssembleSkipsWithoutImages(t *testing.T) {
	cfg, folder, assembler := setup(t)
	writeAudio(t, folder)
	stubProbe(t, 9.0)

	called := false
	assembler.WithCommandRunner(func(context.Context, string, ...string) error {
		called = true
		return nil
	})

	_, err := assembler.Assemble(context.Background(), folder)
	if !errors.Is(err, services.ErrMissingPrerequisite) {
		t.Fatalf("expected skip, got %v", err)
	}
	if called {
		t.Fatal("encoder must not run")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ReelsDir, "f1.mp4")); !os.IsNotExist(err) {
		t.Fatal("no reel expected")
	}
}

func TestAssembleSkipsWithoutAudio(t *testing.T) {
	cfg, folder, assembler := setup(t, "a.jpg")
	restore := slideshow.SetProbeForTests(func(context.Context, string, string) (float64, error) {
		t.Fatal("probe must not run")
		return 0, nil
	})
	defer restore()

	called := false
	assembler.WithCommandRunner(func(context.Context, string, ...string) error {
		called = true
		return nil
	})

	_, err := assembler.Assemble(context.Background(), folder)
	if !errors.Is(err, services.ErrMissingPrerequisite) {
		t.Fatalf("expected skip, got %v", err)
	}
	if called {
		t.Fatal("encoder must not run")
	}
	assertStagingEmpty(t, cfg)
}

func TestAssembleEncoderFailureCleansUp(t *testing.T) {
	cfg, folder, assembler := setup(t, "a.jpg", "b.jpg")
	writeAudio(t, folder)
	stubProbe(t, 4.0)

	var rec recordedRun
	assembler.WithCommandRunner(recordingRunner(&rec, errors.New("exit status 1: Invalid data found when processing input")))

	_, err := assembler.Assemble(context.Background(), folder)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected ffmpeg diagnostics in error, got %v", err)
	}
	if rec.script == "" {
		t.Fatal("expected encoder to have been invoked with a script")
	}
	assertStagingEmpty(t, cfg)

	entries, _ := os.ReadDir(cfg.Paths.ReelsDir)
	if len(entries) != 0 {
		t.Fatalf("no output expected, found %d entries", len(entries))
	}
}

func TestAssembleProbeFailure(t *testing.T) {
	_, folder, assembler := setup(t, "a.jpg")
	writeAudio(t, folder)
	restore := slideshow.SetProbeForTests(func(context.Context, string, string) (float64, error) {
		return 0, errors.New("moov atom not found")
	})
	defer restore()

	_, err := assembler.Assemble(context.Background(), folder)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestAssembleRejectsEmptyOutput(t *testing.T) {
	cfg, folder, assembler := setup(t, "a.jpg")
	writeAudio(t, folder)
	stubProbe(t, 2.0)
	assembler.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	_, err := assembler.Assemble(context.Background(), folder)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error when no output is written, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ReelsDir, "f1.mp4")); !os.IsNotExist(err) {
		t.Fatal("no reel expected")
	}
}
