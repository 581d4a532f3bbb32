// Package api exposes the HTTP surface of the dashboard backend: the
// query endpoint, knowledge base file management, and the dashboard
// aggregation feed.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/therewardcollection/trcdesk/internal/blob"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB
const maxUploadSize = 32 << 20     // 32MB

// Deps holds the collaborators behind the HTTP handlers. Store and Blobs
// may be nil when the deployment has no database or file storage; the
// affected endpoints then report "not configured" instead of failing.
type Deps struct {
	Answerer QueryAnswerer
	Store    *storage.Store
	Blobs    blob.Store
	FilesDir string // local directory served at /files/; "" disables
}

// NewHandler returns the full HTTP router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/api/query", handleQuery(deps))
	r.Get("/api/files", handleListFiles(deps))
	r.Delete("/api/files", handleDeleteFile(deps))
	r.Post("/api/upload", handleUpload(deps))
	r.Post("/api/sync", handleSync(deps))
	r.Get("/api/dashboard", handleDashboard(deps))

	if deps.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(deps.FilesDir))))
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}
