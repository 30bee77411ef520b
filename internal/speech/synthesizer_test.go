package speech_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/speech"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/workfolder"
)

var audioFixture = []byte("ID3\x03\x00fake-mp3-frames\x00\xff\xfb")

type providerStub struct {
	server   *httptest.Server
	reply    func(baseURL string) (int, string)
	requests atomic.Int32

	mu       sync.Mutex
	lastBody speech.Request
}

func (p *providerStub) last() speech.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastBody
}

func newProviderStub(t *testing.T, reply func(baseURL string) (int, string)) *providerStub {
	t.Helper()
	stub := &providerStub{reply: reply}
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		stub.requests.Add(1)
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("api-key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		stub.mu.Lock()
		_ = json.Unmarshal(body, &stub.lastBody)
		stub.mu.Unlock()
		status, payload := stub.reply(stub.server.URL)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	})
	mux.HandleFunc("/audio.mp3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(audioFixture)
	})
	mux.HandleFunc("/missing.mp3", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (p *providerStub) synthesizer() *speech.Synthesizer {
	client := speech.NewClient(speech.Config{BaseURL: p.server.URL + "/generate", APIKey: "test-key"})
	return speech.NewSynthesizer(client, "en-IN-alia", "mp3", logging.NewNop())
}

func newFolder(t *testing.T, description string) workfolder.WorkFolder {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteWorkFolder(t, root, "f1", description, "a.jpg")
	return workfolder.New(root, "f1")
}

func TestSynthesizeAllResponseShapesProduceIdenticalAudio(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(audioFixture)
	shapes := map[string]func(string) (int, string){
		"object url": func(base string) (int, string) {
			return http.StatusOK, `{"audioFile":"` + base + `/audio.mp3"}`
		},
		"bare string": func(base string) (int, string) {
			return http.StatusOK, `"` + base + `/audio.mp3"`
		},
		"inline": func(string) (int, string) {
			return http.StatusOK, `{"encodedAudio":"` + encoded + `"}`
		},
	}
	for name, reply := range shapes {
		t.Run(name, func(t *testing.T) {
			stub := newProviderStub(t, reply)
			folder := newFolder(t, "  Hello reel  \n")

			if err := stub.synthesizer().Synthesize(context.Background(), folder); err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			got, err := os.ReadFile(folder.AudioPath())
			if err != nil {
				t.Fatalf("read audio: %v", err)
			}
			if !bytes.Equal(got, audioFixture) {
				t.Fatalf("audio mismatch: %q", got)
			}
			sent := stub.last()
			if sent.Text != "Hello reel" {
				t.Fatalf("text sent = %q", sent.Text)
			}
			if sent.VoiceID != "en-IN-alia" || sent.Format != "MP3" {
				t.Fatalf("unexpected request %+v", sent)
			}
		})
	}
}

func TestSynthesizeMissingDescriptionSkipsWithoutRequest(t *testing.T) {
	stub := newProviderStub(t, func(string) (int, string) { return http.StatusOK, `"x"` })
	folder := newFolder(t, "")

	err := stub.synthesizer().Synthesize(context.Background(), folder)
	if !errors.Is(err, services.ErrMissingPrerequisite) {
		t.Fatalf("expected missing prerequisite, got %v", err)
	}
	if stub.requests.Load() != 0 {
		t.Fatalf("provider should not be called, got %d requests", stub.requests.Load())
	}
	if folder.HasAudio() {
		t.Fatal("no audio expected")
	}
}

func TestSynthesizeUnrecognizedResponse(t *testing.T) {
	stub := newProviderStub(t, func(string) (int, string) { return http.StatusOK, `{"status":"queued"}` })
	folder := newFolder(t, "text")

	err := stub.synthesizer().Synthesize(context.Background(), folder)
	if !errors.Is(err, services.ErrIntegration) {
		t.Fatalf("expected integration error, got %v", err)
	}
	var unrecognized *speech.UnrecognizedResponseError
	if !errors.As(err, &unrecognized) {
		t.Fatalf("expected UnrecognizedResponseError in chain, got %v", err)
	}
	if folder.HasAudio() {
		t.Fatal("no audio expected")
	}
}

func TestSynthesizeDownloadFailureLeavesNoFile(t *testing.T) {
	stub := newProviderStub(t, func(base string) (int, string) {
		return http.StatusOK, `{"audioFile":"` + base + `/missing.mp3"}`
	})
	folder := newFolder(t, "text")

	err := stub.synthesizer().Synthesize(context.Background(), folder)
	if !errors.Is(err, services.ErrIntegration) {
		t.Fatalf("expected integration error, got %v", err)
	}
	var statusErr *speech.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if folder.HasAudio() {
		t.Fatal("no audio expected after failed download")
	}
	entries, _ := os.ReadDir(folder.Path)
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".part") {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
}

func TestSynthesizeProviderErrorStatus(t *testing.T) {
	stub := newProviderStub(t, func(string) (int, string) { return http.StatusInternalServerError, `{"error":"boom"}` })
	folder := newFolder(t, "text")

	err := stub.synthesizer().Synthesize(context.Background(), folder)
	var statusErr *speech.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 status error, got %v", err)
	}
	if !errors.Is(err, services.ErrIntegration) {
		t.Fatalf("expected integration marker, got %v", err)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := speech.NewClient(speech.Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Generate(context.Background(), speech.Request{Text: "x"}); err == nil {
		t.Fatal("expected api key error")
	}
}
