package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
)

const defaultMaxUploadBytes = 64 << 20

// FolderLister is the read side of the attempt store used by the API.
type FolderLister interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Record, error)
}

// ServerConfig wires handlers to the directories and store they serve.
type ServerConfig struct {
	UploadDir      string
	ReelsDir       string
	Folders        FolderLister
	Logger         *slog.Logger
	MaxUploadBytes int64
	// Wake, when set, is called after an upload lands so the queue
	// processor can start a cycle early.
	Wake func()
}

// NewRouter builds the HTTP routes.
func NewRouter(cfg ServerConfig) *chi.Mux {
	cfg.Logger = logging.NewComponentLogger(cfg.Logger, "api")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/create", newUploadHandler())
	r.Post("/create", createUploadHandler(cfg))
	r.Get("/gallery", galleryHandler(cfg))
	r.Get("/reels/{name}", reelHandler(cfg))
	r.Get("/api/folders", listFoldersHandler(cfg))
	return r
}
