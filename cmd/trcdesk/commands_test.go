package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/therewardcollection/trcdesk/internal/storage"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":"not found"}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestAskRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/query": `{"result":"There are 3 live merchants in USA."}`,
	})
	client := ts.client()

	req := map[string]any{
		"query": "how many live merchants in the US?",
		"tone":  "sales",
	}
	resp, err := client.post(ctx, "/api/query", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["result"] != "There are 3 live merchants in USA." {
		t.Errorf("result = %q", result["result"])
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/api/query" {
		t.Errorf("request = %s %s", r.Method, r.Path)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["tone"] != "sales" {
		t.Errorf("body.tone = %v, want sales", body["tone"])
	}
}

func TestDecodeJSON_ServerError(t *testing.T) {
	ts := newTestServer(t, nil)
	client := ts.client()

	resp, err := client.get(ctx, "/api/nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var v any
	if err := decodeJSON(resp, &v); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestBuildMultipart(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/contract.txt"
	if err := os.WriteFile(path, []byte("clause text"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	body, contentType, err := buildMultipart([]string{path})
	if err != nil {
		t.Fatalf("buildMultipart: %v", err)
	}
	if contentType == "" {
		t.Error("empty content type")
	}

	var buf bytes.Buffer
	buf.ReadFrom(body)
	if !bytes.Contains(buf.Bytes(), []byte(`filename="contract.txt"`)) {
		t.Error("multipart body missing file part")
	}
	if !bytes.Contains(buf.Bytes(), []byte("clause text")) {
		t.Error("multipart body missing file content")
	}
}

func TestBuildMultipart_MissingFile(t *testing.T) {
	if _, _, err := buildMultipart([]string{"/nonexistent/file.txt"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImportRecords_ReplacesTable(t *testing.T) {
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	old := []storage.EntityRecord{{"Merchant": "Old Corp"}}
	if err := store.InsertEntityRecords("Merchants", old); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	fresh := []storage.EntityRecord{
		{"Merchant": "Acme", "Deal Stage": "Live"},
		{"Merchant": "Globex", "Deal Stage": "Paused"},
	}
	if err := importRecords(store, "Merchants", fresh); err != nil {
		t.Fatalf("importRecords: %v", err)
	}

	got, err := store.ListEntityRecords(ctx, "Merchants")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2 (old rows must be replaced)", len(got))
	}
	for _, rec := range got {
		if rec.String("Merchant") == "Old Corp" {
			t.Error("old record survived import")
		}
	}
}
