// Package ingest runs the background extraction worker: uploaded files
// are queued as extract_text jobs, and the worker turns them into
// searchable knowledge documents.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/therewardcollection/trcdesk/internal/extract"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

// JobType is the queue type processed by this worker.
const JobType = "extract_text"

// JobStore abstracts the job queue and knowledge doc persistence.
type JobStore interface {
	ClaimNextJob(types []string) (*storage.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
	SaveKnowledgeDoc(doc storage.KnowledgeDoc) error
}

// BlobDownloader fetches uploaded file bytes by object path.
type BlobDownloader interface {
	Download(objectPath string) ([]byte, error)
}

// Payload is the extract_text job payload.
type Payload struct {
	ObjectPath string `json:"object_path"`
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
}

// NewJob builds a queued extraction job for an uploaded object.
func NewJob(p Payload) (storage.Job, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return storage.Job{}, fmt.Errorf("encoding payload: %w", err)
	}
	return storage.Job{
		ID:          uuid.New().String(),
		Type:        JobType,
		PayloadJSON: string(data),
	}, nil
}

// Worker processes extract_text jobs from the SQLite job queue.
type Worker struct {
	store  JobStore
	blobs  BlobDownloader
	poll   time.Duration
	logger *slog.Logger
}

// NewWorker creates a Worker with the given dependencies.
// If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(store JobStore, blobs BlobDownloader, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		store:  store,
		blobs:  blobs,
		poll:   pollInterval,
		logger: slog.Default(),
	}
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and processes a single extract_text job.
// Returns true if a job was processed (regardless of success/failure).
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextJob([]string{JobType})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Warn("job failed", "job_id", job.ID, "error", err)
		if failErr := w.store.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, nil
	}

	if err := w.store.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	return true, nil
}

func (w *Worker) processJob(ctx context.Context, job *storage.Job) error {
	var payload Payload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	data, err := w.blobs.Download(payload.ObjectPath)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", payload.ObjectPath, err)
	}

	ext := strings.TrimPrefix(path.Ext(payload.FileName), ".")
	text, err := extract.Text(data, ext)
	if err != nil {
		return fmt.Errorf("extracting text from %s: %w", payload.FileName, err)
	}

	doc := storage.KnowledgeDoc{
		ID:            uuid.New().String(),
		FileName:      payload.FileName,
		FileURL:       payload.FileURL,
		FileType:      ext,
		ExtractedText: text,
		UploadedAt:    time.Now().UTC(),
	}
	if err := w.store.SaveKnowledgeDoc(doc); err != nil {
		return fmt.Errorf("saving knowledge doc for %s: %w", payload.FileName, err)
	}

	w.logger.Info("file indexed", "file", payload.FileName, "chars", len(text))
	return nil
}
