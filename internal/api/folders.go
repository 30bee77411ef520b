package api

import (
	"net/http"
	"strings"

	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
)

func listFoldersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Folders == nil {
			WriteJSON(w, http.StatusOK, FoldersResponse{Folders: []Folder{}})
			return
		}
		var statuses []queue.Status
		for _, value := range r.URL.Query()["status"] {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			status, ok := queue.ParseStatus(trimmed)
			if !ok {
				WriteError(w, http.StatusBadRequest, "unknown status "+trimmed, "BAD_REQUEST")
				return
			}
			statuses = append(statuses, status)
		}

		records, err := cfg.Folders.List(r.Context(), statuses...)
		if err != nil {
			logging.WithContext(r.Context(), cfg.Logger).Warn("folder listing failed", logging.Error(err))
			WriteError(w, http.StatusInternalServerError, "failed to list folders", "INTERNAL_ERROR")
			return
		}
		resp := FoldersResponse{Folders: make([]Folder, 0, len(records))}
		for _, rec := range records {
			resp.Folders = append(resp.Folders, FolderFromRecord(rec))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
