package lexicon

import (
	"sort"
	"testing"
)

func TestMatchTable(t *testing.T) {
	tests := []struct {
		query string
		want  EntityTable
	}{
		{"how many retailers do we have", Merchants},
		{"show me every merchant", Merchants},
		{"list our publishers", Publishers},
		{"which partners are live", Publishers},
		{"what is the weather", ""},
		{"departments and compartments", ""}, // no substring matches
	}
	for _, tt := range tests {
		if got := MatchTable(tt.query); got != tt.want {
			t.Errorf("MatchTable(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestMatchTable_FirstRuleWins(t *testing.T) {
	// Both tables mentioned: merchant rule is scanned first.
	if got := MatchTable("merchants and publishers"); got != Merchants {
		t.Errorf("MatchTable = %q, want %q", got, Merchants)
	}
}

func TestMatchStatus(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"how many live retailers", "live"},
		{"count the ACTIVE merchants", "live"},
		{"enabled publishers please", "live"},
		{"which merchants are paused", "paused"},
		{"alive and kicking", ""}, // word boundary holds
		{"no status here", ""},
	}
	for _, tt := range tests {
		if got := MatchStatus(tt.query); got != tt.want {
			t.Errorf("MatchStatus(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestMatchRegion(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"retailers in the us", RegionUSA},
		{"merchants in america", RegionUSA},
		{"publishers in the united kingdom", RegionUK},
		{"partners in europe", RegionEurope},
		{"anything in france", ""},
		{"status update", ""}, // "us" inside "status" must not match
	}
	for _, tt := range tests {
		if got := MatchRegion(tt.query); got != tt.want {
			t.Errorf("MatchRegion(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestParseRegions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"UK, Europe", []string{"Europe", "UK"}},
		{"usa", []string{"USA"}},
		{"United Kingdom", []string{"UK"}},
		{"Great Britain and America", []string{"UK", "USA"}},
		{"france", nil},
		{"", nil},
		{"UK, uk, United Kingdom", []string{"UK"}}, // duplicate-free
	}
	for _, tt := range tests {
		got := ParseRegions(tt.in)
		sort.Strings(got)
		want := append([]string(nil), tt.want...)
		sort.Strings(want)
		if len(got) != len(want) {
			t.Errorf("ParseRegions(%q) = %v, want %v", tt.in, got, want)
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("ParseRegions(%q) = %v, want %v", tt.in, got, want)
				break
			}
		}
	}
}

func TestHasRegion(t *testing.T) {
	if !HasRegion("UK, Europe", RegionEurope) {
		t.Error("expected Europe in \"UK, Europe\"")
	}
	if HasRegion("UK, Europe", RegionUSA) {
		t.Error("did not expect USA in \"UK, Europe\"")
	}
}
