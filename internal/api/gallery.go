package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelsmith/internal/logging"
)

// ListReels returns the finished reels in dir, newest first. Hidden files,
// which include in-progress partial outputs, are not listed.
func ListReels(dir string) ([]Reel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Reel{}, nil
		}
		return nil, err
	}
	reels := make([]Reel, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".mp4") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reels = append(reels, Reel{
			Name:       name,
			URL:        "/reels/" + url.PathEscape(name),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	sort.SliceStable(reels, func(i, j int) bool {
		if reels[i].ModifiedAt.Equal(reels[j].ModifiedAt) {
			return reels[i].Name < reels[j].Name
		}
		return reels[i].ModifiedAt.After(reels[j].ModifiedAt)
	})
	return reels, nil
}

func galleryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reels, err := ListReels(cfg.ReelsDir)
		if err != nil {
			logging.WithContext(r.Context(), cfg.Logger).Warn("gallery listing failed", logging.Error(err))
			WriteError(w, http.StatusInternalServerError, "failed to list reels", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, GalleryResponse{Reels: reels})
	}
}

func reelHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			WriteError(w, http.StatusNotFound, "reel not found", "NOT_FOUND")
			return
		}
		path := filepath.Join(cfg.ReelsDir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			WriteError(w, http.StatusNotFound, "reel not found", "NOT_FOUND")
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeFile(w, r, path)
	}
}
