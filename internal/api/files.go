package api

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/therewardcollection/trcdesk/internal/blob"
	"github.com/therewardcollection/trcdesk/internal/ingest"
)

// listPrefixes are the blob prefixes the knowledge base lives under: the
// bucket root for hand-placed files and uploads/ for files from the UI.
var listPrefixes = []string{"", "uploads"}

type fileEntry struct {
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func handleListFiles(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Blobs == nil {
			httpError(w, http.StatusInternalServerError, "file storage not configured")
			return
		}

		files := []fileEntry{}
		for _, prefix := range listPrefixes {
			listed, err := deps.Blobs.List(prefix)
			if err != nil {
				slog.Error("listing files failed", "prefix", prefix, "error", err)
				continue
			}
			for _, f := range listed {
				files = append(files, fileEntry{
					FileName:  f.Name,
					FileURL:   f.Path,
					URL:       deps.Blobs.PublicURL(f.Path),
					Size:      f.Size,
					UpdatedAt: f.UpdatedAt,
				})
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"files": files})
	}
}

func handleDeleteFile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Blobs == nil {
			httpError(w, http.StatusInternalServerError, "file storage not configured")
			return
		}

		path := r.URL.Query().Get("path")
		if path == "" {
			httpError(w, http.StatusBadRequest, "path required")
			return
		}

		if err := deps.Blobs.Remove(path); err != nil {
			httpError(w, http.StatusInternalServerError, "failed to remove file: %v", err)
			return
		}
		if deps.Store != nil {
			if err := deps.Store.DeleteKnowledgeDocByURL(deps.Blobs.PublicURL(path)); err != nil {
				slog.Error("deleting knowledge doc failed", "path", path, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Blobs == nil || deps.Store == nil {
			httpError(w, http.StatusInternalServerError, "file storage not configured")
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httpError(w, http.StatusBadRequest, "failed to parse form: %v", err)
			return
		}

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			httpError(w, http.StatusBadRequest, "no files in request")
			return
		}

		type uploadedFile struct {
			Name string `json:"name"`
			Path string `json:"path"`
		}
		uploaded := []uploadedFile{}
		queued := 0

		for _, h := range headers {
			objectPath, err := storeUpload(deps.Blobs, h)
			if err != nil {
				slog.Error("upload failed", "file", h.Filename, "error", err)
				continue
			}

			job, err := ingest.NewJob(ingest.Payload{
				ObjectPath: objectPath,
				FileName:   h.Filename,
				FileURL:    deps.Blobs.PublicURL(objectPath),
			})
			if err != nil {
				slog.Error("building extraction job failed", "file", h.Filename, "error", err)
				continue
			}
			if err := deps.Store.EnqueueJob(job); err != nil {
				slog.Error("queueing extraction failed", "file", h.Filename, "error", err)
			} else {
				queued++
			}

			uploaded = append(uploaded, uploadedFile{Name: h.Filename, Path: objectPath})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"uploaded": uploaded,
			"queued":   queued,
		})
	}
}

// storeUpload writes one multipart file into the blob store under a
// timestamped uploads/ path so repeated uploads of the same name never
// collide.
func storeUpload(blobs blob.Store, h *multipart.FileHeader) (string, error) {
	f, err := h.Open()
	if err != nil {
		return "", fmt.Errorf("opening %q: %w", h.Filename, err)
	}
	defer f.Close()

	objectPath := fmt.Sprintf("uploads/%d_%s", time.Now().UnixMilli(), h.Filename)
	if err := blobs.Upload(objectPath, f); err != nil {
		return "", err
	}
	return objectPath, nil
}

// handleSync walks the blob store and queues extraction for every file
// that has no knowledge doc yet. Already-indexed files are skipped.
func handleSync(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Blobs == nil || deps.Store == nil {
			httpError(w, http.StatusInternalServerError, "file storage not configured")
			return
		}

		processed := 0
		skipped := 0
		for _, prefix := range listPrefixes {
			listed, err := deps.Blobs.List(prefix)
			if err != nil {
				slog.Error("listing files failed", "prefix", prefix, "error", err)
				continue
			}
			for _, f := range listed {
				fileURL := deps.Blobs.PublicURL(f.Path)
				indexed, err := deps.Store.HasKnowledgeDocForURL(fileURL)
				if err != nil {
					slog.Error("index lookup failed", "file", f.Name, "error", err)
					continue
				}
				if indexed {
					skipped++
					continue
				}

				job, err := ingest.NewJob(ingest.Payload{
					ObjectPath: f.Path,
					FileName:   f.Name,
					FileURL:    fileURL,
				})
				if err != nil {
					slog.Error("building extraction job failed", "file", f.Name, "error", err)
					continue
				}
				if err := deps.Store.EnqueueJob(job); err != nil {
					slog.Error("queueing extraction failed", "file", f.Name, "error", err)
					continue
				}
				processed++
			}
		}

		writeJSON(w, http.StatusOK, map[string]int{
			"processed": processed,
			"skipped":   skipped,
		})
	}
}
