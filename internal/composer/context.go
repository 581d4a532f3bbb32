// Package composer assembles the background context and system persona
// for completion requests.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/therewardcollection/trcdesk/internal/lexicon"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

const (
	// DefaultMaxContextChars bounds the assembled context so the
	// completion request payload stays small.
	DefaultMaxContextChars = 4000

	defaultNameLimit = 50
	defaultTopDocs   = 5
)

// ContextStore is the read surface the assembler needs.
type ContextStore interface {
	ListEntityRecords(ctx context.Context, collection string) ([]storage.EntityRecord, error)
	CountEntityRecords(ctx context.Context, collection string) (int, error)
	SearchKnowledgeDocs(ctx context.Context, query string, limit int) ([]storage.KnowledgeDoc, error)
}

// Assembler gathers bounded background text for free-form completions:
// entity name listings, table totals, and the best-matching knowledge
// documents for the query.
type Assembler struct {
	store    ContextStore
	maxChars int
}

// NewAssembler creates an Assembler. store may be nil when no entity
// store is configured; Assemble then returns "". maxChars <= 0 selects
// DefaultMaxContextChars.
func NewAssembler(store ContextStore, maxChars int) *Assembler {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &Assembler{store: store, maxChars: maxChars}
}

// tableNames holds one table's name listing and total, fetched in the
// scatter/gather phase.
type tableNames struct {
	names []string
	total int
}

// Assemble builds the context string for a query. Every source tolerates
// failure: a failed retrieval is logged and its section omitted, yielding
// progressively shorter context rather than an error. The result never
// exceeds the configured character budget.
func (a *Assembler) Assemble(ctx context.Context, query string) string {
	if a == nil || a.store == nil {
		return ""
	}

	var merchants, publishers tableNames
	var docs []storage.KnowledgeDoc

	// Independent retrievals run as a scatter/gather; each failure only
	// blanks its own section.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		merchants.names = a.fetchNames(gCtx, lexicon.Merchants)
		return nil
	})
	g.Go(func() error {
		publishers.names = a.fetchNames(gCtx, lexicon.Publishers)
		return nil
	})
	g.Go(func() error {
		merchants.total = a.fetchCount(gCtx, lexicon.Merchants)
		return nil
	})
	g.Go(func() error {
		publishers.total = a.fetchCount(gCtx, lexicon.Publishers)
		return nil
	})
	g.Go(func() error {
		var err error
		docs, err = a.store.SearchKnowledgeDocs(gCtx, query, defaultTopDocs)
		if err != nil {
			slog.Warn("context: knowledge search failed", "error", err)
			docs = nil
		}
		return nil
	})
	g.Wait()

	b := NewBudget(a.maxChars)
	if len(merchants.names) > 0 {
		b.Append(fmt.Sprintf("Merchant names: %s.\n", strings.Join(merchants.names, ", ")))
	}
	if len(publishers.names) > 0 {
		b.Append(fmt.Sprintf("Publisher names: %s.\n", strings.Join(publishers.names, ", ")))
	}
	if merchants.total > 0 || publishers.total > 0 {
		b.Append(fmt.Sprintf("There are %d merchants and %d publishers in total.\n", merchants.total, publishers.total))
	}
	for _, d := range docs {
		if !b.Append(d.ExtractedText + "\n") {
			break
		}
	}

	return b.String()
}

func (a *Assembler) fetchNames(ctx context.Context, table lexicon.EntityTable) []string {
	records, err := a.store.ListEntityRecords(ctx, string(table))
	if err != nil {
		slog.Warn("context: listing records failed", "table", table, "error", err)
		return nil
	}

	var names []string
	for _, r := range records {
		if len(names) >= defaultNameLimit {
			break
		}
		if name := r.DisplayName(string(table)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (a *Assembler) fetchCount(ctx context.Context, table lexicon.EntityTable) int {
	count, err := a.store.CountEntityRecords(ctx, string(table))
	if err != nil {
		slog.Warn("context: counting records failed", "table", table, "error", err)
		return 0
	}
	return count
}
