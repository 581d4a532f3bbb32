// Package lexicon holds the static vocabulary tables that map natural
// language terms to canonical domain values: entity tables, deal statuses,
// and regions. All matching is case-insensitive and word-boundary bounded.
package lexicon

import "regexp"

// EntityTable identifies one of the two business record collections.
type EntityTable string

const (
	Merchants  EntityTable = "Merchants"
	Publishers EntityTable = "Publishers"
)

// Canonical region names. Records whose countries field matches none of
// these are treated as "Other" by aggregation call sites.
const (
	RegionUK     = "UK"
	RegionEurope = "Europe"
	RegionUSA    = "USA"
)

// tableRule maps a synonym pattern to an entity table. Rules are scanned
// in order; the first match wins.
type tableRule struct {
	pattern *regexp.Regexp
	table   EntityTable
}

var tableRules = []tableRule{
	{regexp.MustCompile(`(?i)\b(retailers?|merchants?)\b`), Merchants},
	{regexp.MustCompile(`(?i)\b(partners?|publishers?)\b`), Publishers},
}

// MatchTable resolves the first entity table mentioned in the query.
// Returns "" when no table synonym is present.
func MatchTable(query string) EntityTable {
	for _, r := range tableRules {
		if r.pattern.MatchString(query) {
			return r.table
		}
	}
	return ""
}

type statusRule struct {
	pattern *regexp.Regexp
	status  string
}

var statusRules = []statusRule{
	{regexp.MustCompile(`(?i)\b(live|active|enabled)\b`), "live"},
	{regexp.MustCompile(`(?i)\b(paused|inactive|disabled|on hold)\b`), "paused"},
}

// MatchStatus resolves the first canonical status mentioned in the query,
// or "" when none matched.
func MatchStatus(query string) string {
	for _, r := range statusRules {
		if r.pattern.MatchString(query) {
			return r.status
		}
	}
	return ""
}

type regionRule struct {
	pattern *regexp.Regexp
	region  string
}

var regionRules = []regionRule{
	{regexp.MustCompile(`(?i)\b(usa|united states|us|america)\b`), RegionUSA},
	{regexp.MustCompile(`(?i)\b(uk|united kingdom|great britain|gb)\b`), RegionUK},
	{regexp.MustCompile(`(?i)\b(eu|europe)\b`), RegionEurope},
}

// MatchRegion resolves the first canonical region mentioned in the query,
// or "" when none matched. Callers may apply their own fallback for
// unrecognised place names (see intent.Parse).
func MatchRegion(query string) string {
	for _, r := range regionRules {
		if r.pattern.MatchString(query) {
			return r.region
		}
	}
	return ""
}

// Region patterns for free-text countries fields. These use comma/space
// boundaries rather than \b so that values like "UK, Europe" and
// "United Kingdom" both match without tripping on substrings.
var (
	ukPattern     = regexp.MustCompile(`(?i)(^|,|\s)(uk|united kingdom|great britain|gb)(,|\s|$)`)
	europePattern = regexp.MustCompile(`(?i)(^|,|\s)(eu|europe)(,|\s|$)`)
	usaPattern    = regexp.MustCompile(`(?i)(^|,|\s)(usa|united states|us|america)(,|\s|$)`)
)

// ParseRegions scans free text (typically a record's countries field) and
// returns the set of canonical regions it mentions, duplicate-free. A
// single value can name several regions ("UK, Europe"). No match returns
// an empty slice; callers conventionally bucket that as "Other".
//
// Every region-based filter and aggregation must go through this function.
// Earlier revisions of the dashboard used plain equality here and drifted
// out of sync with the query pipeline.
func ParseRegions(freeText string) []string {
	if freeText == "" {
		return nil
	}
	var regions []string
	if ukPattern.MatchString(freeText) {
		regions = append(regions, RegionUK)
	}
	if europePattern.MatchString(freeText) {
		regions = append(regions, RegionEurope)
	}
	if usaPattern.MatchString(freeText) {
		regions = append(regions, RegionUSA)
	}
	return regions
}

// HasRegion reports whether region is among the regions parsed from freeText.
func HasRegion(freeText, region string) bool {
	for _, r := range ParseRegions(freeText) {
		if r == region {
			return true
		}
	}
	return false
}
