package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/api"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/testsupport"
)

type upload struct {
	field, filename, body string
}

func newServer(t *testing.T, cfg *config.Config, store *queue.Store, wake func()) *httptest.Server {
	t.Helper()
	serverCfg := api.ServerConfig{
		UploadDir: cfg.Paths.UploadDir,
		ReelsDir:  cfg.Paths.ReelsDir,
		Logger:    logging.NewNop(),
		Wake:      wake,
	}
	if store != nil {
		serverCfg.Folders = store
	}
	router := api.NewRouter(serverCfg)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postUpload(t *testing.T, url string, fields map[string]string, files ...upload) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(part, f.body); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url+"/create", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestGetCreateMintsTimeBasedID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srv := newServer(t, cfg, nil, nil)

	resp, err := http.Get(srv.URL + "/create")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	got := decode[api.NewUploadResponse](t, resp)
	id, err := uuid.Parse(got.ID)
	if err != nil {
		t.Fatalf("invalid id %q: %v", got.ID, err)
	}
	if id.Version() != 1 {
		t.Fatalf("expected version 1 uuid, got %d", id.Version())
	}
}

func TestPostCreateWritesWorkFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var woken atomic.Int32
	srv := newServer(t, cfg, nil, func() { woken.Add(1) })

	resp := postUpload(t, srv.URL,
		map[string]string{"uuid": "f1", "text": "Three photos from the trip."},
		upload{"file1", "my photo.JPG", "jpeg-bytes"},
		upload{"file2", "../evil.png", "png-bytes"},
		upload{"file3", "description", "should not clobber"},
	)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[api.UploadResponse](t, resp)
	if got.ID != "f1" || !got.HasDescription || len(got.Files) != 2 {
		t.Fatalf("unexpected response %+v", got)
	}
	if n := woken.Load(); n != 1 {
		t.Fatalf("expected one wake, got %d", n)
	}

	dir := filepath.Join(cfg.Paths.UploadDir, "f1")
	want := map[string]string{
		"my_photo.JPG": "jpeg-bytes",
		"evil.png":     "png-bytes",
		"description":  "Three photos from the trip.",
	}
	for name, content := range want {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(raw) != content {
			t.Fatalf("%s = %q, want %q", name, raw, content)
		}
	}
	entries, _ := os.ReadDir(cfg.Paths.UploadDir)
	if len(entries) != 1 {
		t.Fatalf("staging folder left behind: %d entries", len(entries))
	}
}

func TestPostCreateAddsToExistingFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteWorkFolder(t, cfg.Paths.UploadDir, "f1", "", "a.jpg")
	srv := newServer(t, cfg, nil, nil)

	resp := postUpload(t, srv.URL, map[string]string{"uuid": "f1", "text": "now described"},
		upload{"file", "b.png", "png"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, name := range []string{"a.jpg", "b.png", "description"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.UploadDir, "f1", name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestPostCreateAlwaysWritesDescriptionForNewFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srv := newServer(t, cfg, nil, nil)

	for _, fields := range []map[string]string{
		{"uuid": "empty", "text": ""},
		{"uuid": "untexted"},
	} {
		resp := postUpload(t, srv.URL, fields, upload{"file", "a.jpg", "jpeg"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("%s: status = %d", fields["uuid"], resp.StatusCode)
		}
		if got := decode[api.UploadResponse](t, resp); !got.HasDescription {
			t.Fatalf("%s: expected description reported, got %+v", fields["uuid"], got)
		}
		raw, err := os.ReadFile(filepath.Join(cfg.Paths.UploadDir, fields["uuid"], "description"))
		if err != nil {
			t.Fatalf("%s: expected description file: %v", fields["uuid"], err)
		}
		if len(raw) != 0 {
			t.Fatalf("%s: description = %q, want empty", fields["uuid"], raw)
		}
	}
}

func TestPostCreateKeepsDescriptionWithoutTextField(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteWorkFolder(t, cfg.Paths.UploadDir, "f1", "original words", "a.jpg")
	srv := newServer(t, cfg, nil, nil)

	resp := postUpload(t, srv.URL, map[string]string{"uuid": "f1"}, upload{"file", "b.png", "png"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	raw, err := os.ReadFile(filepath.Join(cfg.Paths.UploadDir, "f1", "description"))
	if err != nil || string(raw) != "original words" {
		t.Fatalf("description = %q (%v), want original words", raw, err)
	}
}

func TestPostCreateRejectsBadRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srv := newServer(t, cfg, nil, nil)

	if resp := postUpload(t, srv.URL, map[string]string{"uuid": "../..", "text": "x"}, upload{"f", "a.jpg", "x"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("traversal id: status = %d", resp.StatusCode)
	}
	if resp := postUpload(t, srv.URL, map[string]string{"uuid": "f1", "text": "x"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("no files: status = %d", resp.StatusCode)
	}
	resp, err := http.Post(srv.URL+"/create", "text/plain", bytes.NewBufferString("nope"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-multipart: status = %d", resp.StatusCode)
	}
	if entries, _ := os.ReadDir(cfg.Paths.UploadDir); len(entries) != 0 {
		t.Fatalf("rejected uploads must not create folders, found %d", len(entries))
	}
}

func TestGalleryListsFinishedReelsOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reels := cfg.Paths.ReelsDir
	for name, body := range map[string]string{
		"f1.mp4":          "reel-one",
		"f2.mp4":          "reel-two",
		".f3.partial.mp4": "partial",
		"notes.txt":       "ignored",
	} {
		if err := os.WriteFile(filepath.Join(reels, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	older := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(reels, "f1.mp4"), older, older); err != nil {
		t.Fatal(err)
	}
	srv := newServer(t, cfg, nil, nil)

	resp, err := http.Get(srv.URL + "/gallery")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	got := decode[api.GalleryResponse](t, resp)
	if len(got.Reels) != 2 || got.Reels[0].Name != "f2.mp4" || got.Reels[1].Name != "f1.mp4" {
		t.Fatalf("unexpected gallery %+v", got.Reels)
	}

	reel, err := http.Get(srv.URL + got.Reels[1].URL)
	if err != nil {
		t.Fatal(err)
	}
	defer reel.Body.Close()
	body, _ := io.ReadAll(reel.Body)
	if reel.StatusCode != http.StatusOK || string(body) != "reel-one" {
		t.Fatalf("reel fetch: %d %q", reel.StatusCode, body)
	}

	for _, name := range []string{".f3.partial.mp4", "missing.mp4"} {
		resp, err := http.Get(srv.URL + "/reels/" + name)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", name, resp.StatusCode)
		}
	}
}

func TestListFoldersReportsAttemptStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	if _, err := store.RecordFailure(ctx, "f1", "speech", "http 500", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkDone(ctx, "f2"); err != nil {
		t.Fatal(err)
	}
	srv := newServer(t, cfg, store, nil)

	resp, err := http.Get(srv.URL + "/api/folders?status=failed")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	got := decode[api.FoldersResponse](t, resp)
	if len(got.Folders) != 1 || got.Folders[0].ID != "f1" || got.Folders[0].Attempts != 1 || got.Folders[0].LastStage != "speech" {
		t.Fatalf("unexpected folders %+v", got.Folders)
	}

	bad, err := http.Get(srv.URL + "/api/folders?status=bogus")
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bogus status: %d", bad.StatusCode)
	}
}
