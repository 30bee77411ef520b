package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %#v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSpeechProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	if result := CheckSpeechProvider(context.Background(), srv.URL, "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckSpeechProvider(context.Background(), srv.URL, "bad-key"); result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if result := CheckSpeechProvider(context.Background(), "", "key"); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
	if result := CheckSpeechProvider(context.Background(), srv.URL, " "); result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestCheckSystemDepsUsesStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected two statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.Available {
			t.Errorf("%s should resolve to the stub: %s", s.Name, s.Detail)
		}
	}
}

func TestRunAll(t *testing.T) {
	if RunAll(context.Background(), nil, false) != nil {
		t.Fatal("expected nil results for nil config")
	}

	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg, false)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("unexpected failure: %#v", results)
	}

	cfg.Speech.BaseURL = ""
	results = RunAll(context.Background(), cfg, true)
	if len(results) != 4 || !Failed(results) {
		t.Fatalf("expected provider check to fail, got %#v", results)
	}
}
