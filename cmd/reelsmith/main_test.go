package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"reelsmith/internal/ledger"
	"reelsmith/internal/queue"
)

type cliEnv struct {
	base       string
	configPath string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[paths]
upload_dir = %q
reels_dir = %q
state_dir = %q
log_dir = %q

[speech]
api_key = "test-key"
`, filepath.Join(base, "uploads"), filepath.Join(base, "reels"), filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{base: base, configPath: configPath}
}

func (e *cliEnv) statePath(name string) string {
	return filepath.Join(e.base, "state", name)
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLedgerCommandListsRecordedFolders(t *testing.T) {
	env := setupCLIEnv(t)
	if err := os.MkdirAll(env.statePath(""), 0o755); err != nil {
		t.Fatal(err)
	}
	l, err := ledger.Open(env.statePath("done.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"f1", "f2", "f1"} {
		if err := l.Record(id); err != nil {
			t.Fatal(err)
		}
	}

	out, err := env.run(t, "ledger")
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if out != "f1\nf2\n" {
		t.Fatalf("ledger output = %q", out)
	}

	out, err = env.run(t, "ledger", "--count")
	if err != nil || strings.TrimSpace(out) != "2" {
		t.Fatalf("ledger --count = %q (%v)", out, err)
	}
}

func TestReadOnlyCommandsDoNotCreateLedger(t *testing.T) {
	env := setupCLIEnv(t)
	for _, args := range [][]string{{"ledger"}, {"ledger", "--count"}, {"status"}} {
		if _, err := env.run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	if _, err := os.Stat(env.statePath("done.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected no ledger file after read-only commands, stat err=%v", err)
	}
}

func TestRetryAndStatusCommands(t *testing.T) {
	env := setupCLIEnv(t)
	if _, err := env.run(t, "config", "path"); err != nil {
		t.Fatalf("config path: %v", err)
	}
	store, err := queue.Open(env.statePath("reelsmith.db"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := store.RecordFailure(ctx, "bad", "slideshow", "exit status 1", 1); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"not running", "0 reels recorded", "bad\tfailed\t1\tslideshow\texit status 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "retry", "bad", "unknown")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !strings.Contains(out, "bad: queued for retry") || !strings.Contains(out, "unknown: not in failed state") {
		t.Fatalf("unexpected retry output %q", out)
	}

	store, err = queue.Open(env.statePath("reelsmith.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	rec, err := store.Get(ctx, "bad")
	if err != nil || rec == nil || rec.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %#v (%v)", rec, err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.base, "nested", "reelsmith.toml")

	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected target in output, got %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestConfigPathReportsFlag(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != env.configPath {
		t.Fatalf("config path = %q, want %q", out, env.configPath)
	}
}

func TestDoctorReportsMissingEncoder(t *testing.T) {
	env := setupCLIEnv(t)
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintf(f, "\n[encoder]\nffmpeg_binary = %q\n", filepath.Join(env.base, "no-ffmpeg"))
	f.Close()

	out, err := env.run(t, "doctor", "--offline")
	if err == nil {
		t.Fatal("expected doctor to fail without ffmpeg")
	}
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "Upload directory") {
		t.Fatalf("unexpected doctor output:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := truncate("line one\nline two is long", 12); got != "line one ..." {
		t.Fatalf("truncate long = %q", got)
	}
	got := truncate("ffmpeg: Überprüfung fehlgeschlagen", 12)
	if got != "ffmpeg: Ü..." || !utf8.ValidString(got) {
		t.Fatalf("truncate multibyte = %q", got)
	}
}

func TestRenderFolderTable(t *testing.T) {
	records := []*queue.Record{
		{FolderID: "bad", Status: queue.StatusFailed, Attempts: 3, LastStage: "slideshow", LastError: strings.Repeat("ffmpeg: Überprüfung ", 10)},
		{FolderID: "f1", Status: queue.StatusDone, Attempts: 1},
	}
	out := renderFolderTable(records)
	for _, want := range []string{"Folder", "Last error", "bad", "failed", "slideshow", "f1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if !utf8.ValidString(out) {
		t.Fatalf("table is not valid UTF-8:\n%s", out)
	}
	if strings.Count(out, "Überprüfung") >= 10 {
		t.Fatalf("last error not limited to %d runes:\n%s", lastErrorWidth, out)
	}
}

func TestReportPlainLayout(t *testing.T) {
	var buf bytes.Buffer
	rep := newReport(&buf)
	rep.section("Daemon")
	rep.line("Daemon", statusInfo, "not running")
	rep.section("Folders")
	rep.line("Failed", statusWarn, "")
	rep.write(&buf)

	want := "== Daemon ==\n------------\n  Daemon:              [INFO] not running\n\n== Folders ==\n-------------\n  Failed:              [WARN]\n"
	if buf.String() != want {
		t.Fatalf("report = %q, want %q", buf.String(), want)
	}
}
