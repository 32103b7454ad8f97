package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// packageInfo is one entry of the package listing response.
type packageInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
}

// packageServer serves built packages from the output directory.
type packageServer struct {
	outputDir string
}

// newRouter builds the HTTP routes over the output directory.
func newRouter(outputDir string) chi.Router {
	srv := &packageServer{outputDir: outputDir}

	r := chi.NewRouter()
	r.Get("/packages", srv.list)
	r.Get("/packages/{name}", srv.serveFile)
	return r
}

// safeName validates that name is a plain .apkg file name (no separators,
// no traversal) and returns its absolute path under the output directory.
func (s *packageServer) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("package name is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid package name: %s", name)
	}
	if filepath.Ext(cleaned) != ".apkg" {
		return "", fmt.Errorf("not a package file: %s", name)
	}
	return filepath.Join(s.outputDir, cleaned), nil
}

// list handles GET /packages.
func (s *packageServer) list(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil && !os.IsNotExist(err) {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read output directory"))
		return
	}

	out := []packageInfo{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".apkg" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, packageInfo{
			Name:      e.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
			URL:       "/packages/" + e.Name(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": out})
}

// serveFile handles GET /packages/{name}.
func (s *packageServer) serveFile(w http.ResponseWriter, r *http.Request) {
	abs, err := s.safeName(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, abs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
