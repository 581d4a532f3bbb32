// Package responder computes deterministic answers for count and list
// intents directly from the entity store, bypassing the language model.
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/therewardcollection/trcdesk/internal/intent"
	"github.com/therewardcollection/trcdesk/internal/lexicon"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

// NoMatchesMessage is the fixed answer when filtering leaves no rows.
const NoMatchesMessage = "There are no matching entries in our records."

// EntityLister reads all rows of a named collection.
type EntityLister interface {
	ListEntityRecords(ctx context.Context, collection string) ([]storage.EntityRecord, error)
}

// Responder answers actionable intents against the entity store.
type Responder struct {
	store EntityLister
}

// New creates a Responder. store may be nil when no entity store is
// configured; Answer then always falls through.
func New(store EntityLister) *Responder {
	return &Responder{store: store}
}

// Answer executes a count or list intent. The second return is false when
// the intent is not actionable (no table or no action) or no store is
// configured, signalling the caller to fall through to context assembly.
// Store errors are logged and treated as zero rows.
func (r *Responder) Answer(ctx context.Context, in intent.Intent) (string, bool) {
	if r == nil || r.store == nil || !in.Actionable() {
		return "", false
	}

	records, err := r.store.ListEntityRecords(ctx, string(in.Table))
	if err != nil {
		slog.Warn("responder: listing records failed", "table", in.Table, "error", err)
		records = nil
	}

	filtered := filterRecords(records, in)

	switch in.Action {
	case intent.Count:
		return countAnswer(len(filtered), in), true
	case intent.List:
		return listAnswer(filtered, in.Table), true
	}
	return "", false
}

func filterRecords(records []storage.EntityRecord, in intent.Intent) []storage.EntityRecord {
	var out []storage.EntityRecord
	for _, rec := range records {
		if in.Status != "" && !strings.EqualFold(rec.Status(), in.Status) {
			continue
		}
		if in.Region != "" && !lexicon.HasRegion(rec.RegionText(), in.Region) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func countAnswer(count int, in intent.Intent) string {
	if count == 0 {
		return NoMatchesMessage
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "There are %d ", count)
	if in.Status != "" {
		sb.WriteString(in.Status)
		sb.WriteString(" ")
	}
	sb.WriteString(strings.ToLower(string(in.Table)))
	if in.Region != "" {
		sb.WriteString(" in ")
		sb.WriteString(in.Region)
	}
	sb.WriteString(".")
	return sb.String()
}

func listAnswer(records []storage.EntityRecord, table lexicon.EntityTable) string {
	var names []string
	for _, rec := range records {
		if name := rec.DisplayName(string(table)); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return NoMatchesMessage
	}
	return strings.Join(names, ", ")
}
