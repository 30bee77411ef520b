package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"reelsmith/internal/api"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// newAPIServer returns nil when no bind address is configured; the nil
// server's methods are no-ops.
func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}
	srv := &apiServer{bind: bind, logger: logger, daemon: d}

	router := api.NewRouter(api.ServerConfig{
		UploadDir: cfg.Paths.UploadDir,
		ReelsDir:  cfg.Paths.ReelsDir,
		Folders:   d.store,
		Logger:    logger,
		Wake:      d.workflow.Wake,
	})
	router.Get("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve_failed", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "api_listen"),
	)
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// StatusPayload is the JSON form of /api/status.
type StatusPayload struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	Cycles       int           `json:"cycles"`
	LastError    string        `json:"last_error,omitempty"`
	LastFolder   string        `json:"last_folder,omitempty"`
	LedgerSize   int           `json:"ledger_size"`
	Folders      queue.Summary `json:"folders"`
	Dependencies []Dependency  `json:"dependencies"`
}

// Dependency is the JSON form of a binary availability check.
type Dependency struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := StatusPayload{
		Running:    status.Running,
		PID:        status.PID,
		Cycles:     status.Workflow.Cycles,
		LastError:  status.Workflow.LastError,
		LastFolder: status.Workflow.LastFolder,
		LedgerSize: status.Workflow.LedgerSize,
		Folders:    status.Workflow.Folders,
	}
	for _, dep := range status.Dependencies {
		payload.Dependencies = append(payload.Dependencies, Dependency{
			Name:      dep.Name,
			Command:   dep.Command,
			Available: dep.Available,
			Detail:    dep.Detail,
		})
	}
	api.WriteJSON(w, http.StatusOK, payload)
}
