// Package intent turns a free-text query into a structured Intent using
// the static lexicon. Parsing is deterministic and side-effect free; every
// field is independently optional.
package intent

import (
	"regexp"
	"strings"

	"github.com/therewardcollection/trcdesk/internal/lexicon"
)

// Action is the verb resolved from a query.
type Action string

const (
	Count Action = "count"
	List  Action = "list"
)

// Intent is the structured interpretation of a query. Zero values mean
// the corresponding field was not mentioned. Without a Table the intent
// cannot drive a structured answer and falls through to context assembly.
type Intent struct {
	Table  lexicon.EntityTable
	Action Action
	Status string
	Region string
}

// Actionable reports whether the intent can produce a structured answer
// directly from the entity store.
func (in Intent) Actionable() bool {
	return in.Table != "" && in.Action != ""
}

// actionRule maps a verb pattern to an action. Rules are evaluated in
// order and the first match wins, so Count takes priority over List when
// a query contains both ("how many ... list").
type actionRule struct {
	pattern *regexp.Regexp
	action  Action
}

var actionRules = []actionRule{
	{regexp.MustCompile(`how many|count|number of`), Count},
	{regexp.MustCompile(`\blist\b|which|show`), List},
}

// regionFallback captures the phrase after "in"/"in the" when no region
// synonym matched, e.g. "retailers in south africa".
var regionFallback = regexp.MustCompile(`in(?: the)? ([a-z ]+)`)

// Parse resolves table, action, status and region from a raw query.
func Parse(query string) Intent {
	q := strings.ToLower(query)

	var in Intent
	in.Table = lexicon.MatchTable(q)

	for _, r := range actionRules {
		if r.pattern.MatchString(q) {
			in.Action = r.action
			break
		}
	}

	in.Status = lexicon.MatchStatus(q)

	in.Region = lexicon.MatchRegion(q)
	if in.Region == "" {
		if m := regionFallback.FindStringSubmatch(q); m != nil {
			in.Region = strings.TrimSpace(m[1])
		}
	}

	return in
}
