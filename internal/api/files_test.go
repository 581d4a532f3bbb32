package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/therewardcollection/trcdesk/internal/blob"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewLocalStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("creating blob store: %v", err)
	}

	return Deps{Store: store, Blobs: blobs}
}

func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", fileName)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpload_QueuesExtraction(t *testing.T) {
	deps := newTestDeps(t)
	handler := NewHandler(deps)

	body, contentType := multipartUpload(t, "terms.txt", "4.2 Termination requires notice.")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Uploaded []struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"uploaded"`
		Queued int `json:"queued"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Uploaded) != 1 || resp.Uploaded[0].Name != "terms.txt" {
		t.Errorf("uploaded = %+v", resp.Uploaded)
	}
	if resp.Queued != 1 {
		t.Errorf("queued = %d, want 1", resp.Queued)
	}

	// The file must be in the blob store under uploads/.
	uploads, err := deps.Blobs.List("uploads")
	if err != nil {
		t.Fatalf("listing uploads: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("blob uploads = %d, want 1", len(uploads))
	}

	// And an extraction job must be claimable.
	job, err := deps.Store.ClaimNextJob([]string{"extract_text"})
	if err != nil {
		t.Fatalf("claiming job: %v", err)
	}
	if job == nil {
		t.Fatal("no extraction job queued")
	}
}

func TestUpload_NoFiles(t *testing.T) {
	deps := newTestDeps(t)
	handler := NewHandler(deps)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpload_NotConfigured(t *testing.T) {
	handler := NewHandler(Deps{})

	body, contentType := multipartUpload(t, "a.txt", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestListFiles(t *testing.T) {
	deps := newTestDeps(t)
	deps.Blobs.Upload("handbook.pdf", bytes.NewReader([]byte("pdf")))
	deps.Blobs.Upload("uploads/terms.txt", bytes.NewReader([]byte("terms")))
	handler := NewHandler(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Files []fileEntry `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Files) != 2 {
		t.Fatalf("files = %d, want 2: %+v", len(resp.Files), resp.Files)
	}
	if resp.Files[0].FileName != "handbook.pdf" || resp.Files[0].URL != "/files/handbook.pdf" {
		t.Errorf("files[0] = %+v", resp.Files[0])
	}
	if resp.Files[1].FileURL != "uploads/terms.txt" {
		t.Errorf("files[1] = %+v", resp.Files[1])
	}
}

func TestDeleteFile(t *testing.T) {
	deps := newTestDeps(t)
	deps.Blobs.Upload("uploads/old.txt", bytes.NewReader([]byte("old")))
	deps.Store.SaveKnowledgeDoc(storage.KnowledgeDoc{
		ID:       "doc-1",
		FileName: "old.txt",
		FileURL:  "/files/uploads/old.txt",
	})
	handler := NewHandler(deps)

	req := httptest.NewRequest(http.MethodDelete, "/api/files?path=uploads/old.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if _, err := deps.Blobs.Download("uploads/old.txt"); err == nil {
		t.Error("blob still present after delete")
	}
	indexed, err := deps.Store.HasKnowledgeDocForURL("/files/uploads/old.txt")
	if err != nil {
		t.Fatalf("HasKnowledgeDocForURL: %v", err)
	}
	if indexed {
		t.Error("knowledge doc still present after delete")
	}
}

func TestDeleteFile_PathRequired(t *testing.T) {
	handler := NewHandler(newTestDeps(t))

	req := httptest.NewRequest(http.MethodDelete, "/api/files", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSync_QueuesUnindexedOnly(t *testing.T) {
	deps := newTestDeps(t)
	deps.Blobs.Upload("indexed.txt", bytes.NewReader([]byte("a")))
	deps.Blobs.Upload("uploads/new.txt", bytes.NewReader([]byte("b")))
	deps.Store.SaveKnowledgeDoc(storage.KnowledgeDoc{
		ID:      "doc-1",
		FileURL: "/files/indexed.txt",
	})
	handler := NewHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["processed"] != 1 || resp["skipped"] != 1 {
		t.Errorf("resp = %+v, want processed=1 skipped=1", resp)
	}

	job, err := deps.Store.ClaimNextJob([]string{"extract_text"})
	if err != nil {
		t.Fatalf("claiming job: %v", err)
	}
	if job == nil {
		t.Fatal("no extraction job queued")
	}
}
