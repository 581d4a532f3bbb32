package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/therewardcollection/trcdesk/internal/lexicon"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

// regionOther buckets records whose countries field names no known region.
const regionOther = "Other"

// tableStats is the chart feed for one entity table.
type tableStats struct {
	Total    int            `json:"total"`
	ByRegion map[string]int `json:"by_region"`
	ByStatus map[string]int `json:"by_status"`
}

// handleDashboard aggregates both entity tables into per-region and
// per-status counts. Regions go through lexicon.ParseRegions so the chart
// buckets agree with the query pipeline; a record naming several regions
// counts once in each.
func handleDashboard(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httpError(w, http.StatusInternalServerError, "database not configured")
			return
		}

		var merchants, publishers tableStats
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			merchants = aggregateTable(ctx, deps.Store, string(lexicon.Merchants))
			return nil
		})
		g.Go(func() error {
			publishers = aggregateTable(ctx, deps.Store, string(lexicon.Publishers))
			return nil
		})
		g.Wait()

		writeJSON(w, http.StatusOK, map[string]tableStats{
			"merchants":  merchants,
			"publishers": publishers,
		})
	}
}

// aggregateTable counts one collection. A store error degrades to an
// empty table rather than failing the whole dashboard.
func aggregateTable(ctx context.Context, store *storage.Store, collection string) tableStats {
	stats := tableStats{
		ByRegion: map[string]int{},
		ByStatus: map[string]int{},
	}

	records, err := store.ListEntityRecords(ctx, collection)
	if err != nil {
		slog.Error("dashboard aggregation failed", "collection", collection, "error", err)
		return stats
	}

	stats.Total = len(records)
	for _, rec := range records {
		regions := lexicon.ParseRegions(rec.RegionText())
		if len(regions) == 0 {
			stats.ByRegion[regionOther]++
		}
		for _, region := range regions {
			stats.ByRegion[region]++
		}

		status := strings.ToLower(rec.Status())
		if status == "" {
			status = "unknown"
		}
		stats.ByStatus[status]++
	}
	return stats
}
