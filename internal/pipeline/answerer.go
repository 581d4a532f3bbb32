// Package pipeline orchestrates the query-answering flow: clause lookup,
// intent parsing, structured answering, context assembly, and finally the
// completion call.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/therewardcollection/trcdesk/internal/clause"
	"github.com/therewardcollection/trcdesk/internal/composer"
	"github.com/therewardcollection/trcdesk/internal/intent"
	"github.com/therewardcollection/trcdesk/internal/openai"
)

// Request is one query with its caller-supplied flags and optional
// conversation history. History is not persisted server-side.
type Request struct {
	Query   string           `json:"query"`
	Email   bool             `json:"email,omitempty"`
	Short   bool             `json:"short,omitempty"`
	Tone    string           `json:"tone,omitempty"`
	History []openai.Message `json:"history,omitempty"`
}

// Metadata captures diagnostic information about how a query was answered.
type Metadata struct {
	Route      string // "clause", "structured", or "completion"
	ContextLen int
	DurationMs int64
}

// ClauseFinder locates a referenced contract clause.
type ClauseFinder interface {
	Find(ctx context.Context, query string) (clause.Clause, bool)
}

// StructuredResponder answers actionable intents from the entity store.
type StructuredResponder interface {
	Answer(ctx context.Context, in intent.Intent) (string, bool)
}

// ContextAssembler builds bounded background text for a query.
type ContextAssembler interface {
	Assemble(ctx context.Context, query string) string
}

// Answerer runs the full pipeline. Any collaborator may be nil, in which
// case its stage is skipped and the query degrades toward a context-free
// completion call.
type Answerer struct {
	clauses   ClauseFinder
	responder StructuredResponder
	assembler ContextAssembler
	completer openai.Completer
}

// NewAnswerer wires the pipeline stages together.
func NewAnswerer(clauses ClauseFinder, resp StructuredResponder, assembler ContextAssembler, completer openai.Completer) *Answerer {
	return &Answerer{
		clauses:   clauses,
		responder: resp,
		assembler: assembler,
		completer: completer,
	}
}

// Answer resolves one request. A clause reference or an actionable intent
// short-circuits with a deterministic answer; everything else goes to the
// completion API with assembled context. Completion failure is the only
// error surfaced to the caller.
func (a *Answerer) Answer(ctx context.Context, req Request) (answer string, meta Metadata, err error) {
	start := time.Now()
	meta.Route = "completion"
	// Named results so the duration lands on every return path.
	defer func() { meta.DurationMs = time.Since(start).Milliseconds() }()

	if a.clauses != nil {
		if c, ok := a.clauses.Find(ctx, req.Query); ok {
			meta.Route = "clause"
			if c.Text == "" {
				return clause.NotFoundMessage(c.Number), meta, nil
			}
			return clause.AnswerMessage(c), meta, nil
		}
	}

	in := intent.Parse(req.Query)
	if a.responder != nil {
		if answer, ok := a.responder.Answer(ctx, in); ok {
			meta.Route = "structured"
			return answer, meta, nil
		}
	}

	var contextText string
	if a.assembler != nil {
		contextText = a.assembler.Assemble(ctx, req.Query)
	}
	meta.ContextLen = len(contextText)

	messages := buildMessages(req, contextText)

	if a.completer == nil {
		return "", meta, fmt.Errorf("no completion client configured")
	}
	answer, err = a.completer.Complete(ctx, messages)
	if err != nil {
		slog.Error("pipeline: completion failed", "error", err)
		return "", meta, fmt.Errorf("completing query: %w", err)
	}

	slog.Debug("query answered",
		"route", meta.Route,
		"context_len", meta.ContextLen,
		"history_len", len(req.History),
	)

	return strings.TrimSpace(answer), meta, nil
}

// buildMessages assembles the completion request: persona, optional
// context, valid history entries, then the user query. History entries
// missing a role or content are silently dropped.
func buildMessages(req Request, contextText string) []openai.Message {
	messages := []openai.Message{
		{Role: "system", Content: composer.SelectPersona(req.Email, req.Short, req.Tone)},
	}
	if contextText != "" {
		messages = append(messages, openai.Message{Role: "system", Content: "Context:\n" + contextText})
	}
	for _, m := range req.History {
		if m.Role == "" || m.Content == "" {
			continue
		}
		messages = append(messages, m)
	}
	return append(messages, openai.Message{Role: "user", Content: req.Query})
}
