package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/therewardcollection/trcdesk/internal/pipeline"
)

// failureResult is the only text a caller sees when the pipeline errors;
// the underlying cause stays in the server log.
const failureResult = "Sorry, something went wrong answering that. Please try again."

// QueryAnswerer runs the full answer pipeline for one request.
type QueryAnswerer interface {
	Answer(ctx context.Context, req pipeline.Request) (string, pipeline.Metadata, error)
}

func handleQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req pipeline.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"result": "invalid request body"})
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"result": "query is required"})
			return
		}

		if deps.Answerer == nil {
			slog.Error("query received but no answerer configured")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"result": failureResult})
			return
		}

		answer, meta, err := deps.Answerer.Answer(r.Context(), req)
		if err != nil {
			slog.Error("query failed", "error", err, "route", meta.Route)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"result": failureResult})
			return
		}

		slog.Info("query answered",
			"route", meta.Route,
			"context_len", meta.ContextLen,
			"duration_ms", meta.DurationMs,
		)
		writeJSON(w, http.StatusOK, map[string]string{"result": answer})
	}
}
