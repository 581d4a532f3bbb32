// Package clause locates numbered contract paragraphs referenced by a
// query, first in the indexed knowledge base and then in the published
// contract page as a fallback.
package clause

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const fetchTimeout = 10 * time.Second
const maxFetchSize = 5 << 20 // 5MB

var clauseRef = regexp.MustCompile(`(?i)clause\s*(\d+(?:\.\d+)?)`)

// headingStart matches lines that open a new numbered section, e.g.
// "4.3 Termination" or "12 Liability".
var headingStart = regexp.MustCompile(`^\d+(\.\d+)*\b`)

// Clause is a located contract paragraph.
type Clause struct {
	Number string
	Text   string
}

// DocSearcher finds knowledge documents whose extracted text contains the
// given substring, most recently uploaded first.
type DocSearcher interface {
	DocsContaining(ctx context.Context, substr string) ([]string, error)
}

// Finder resolves clause references against indexed documents, falling
// back to one fetch of the published contract URL.
type Finder struct {
	docs        DocSearcher
	fallbackURL string
	httpClient  *http.Client
}

// NewFinder creates a Finder. docs may be nil when no document store is
// configured; the fallback fetch is then the only source. fallbackURL may
// be empty to disable the external fetch.
func NewFinder(docs DocSearcher, fallbackURL string) *Finder {
	return &Finder{
		docs:        docs,
		fallbackURL: fallbackURL,
		httpClient:  &http.Client{Timeout: fetchTimeout},
	}
}

// Reference extracts the clause number from a query, if present.
func Reference(query string) (string, bool) {
	m := clauseRef.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Find looks for a clause reference in the query and tries to locate the
// matching paragraph. The second return is false when the query contains
// no clause reference at all; a reference that cannot be resolved yields
// a Clause with empty Text. Network failures are logged, never returned.
func (f *Finder) Find(ctx context.Context, query string) (Clause, bool) {
	number, ok := Reference(query)
	if !ok {
		return Clause{}, false
	}

	if f.docs != nil {
		texts, err := f.docs.DocsContaining(ctx, number)
		if err != nil {
			slog.Warn("clause: document lookup failed", "clause", number, "error", err)
		}
		for _, text := range texts {
			if snippet := extract(text, number); snippet != "" {
				return Clause{Number: number, Text: snippet}, true
			}
		}
	}

	if snippet := f.fetchFallback(ctx, number); snippet != "" {
		return Clause{Number: number, Text: snippet}, true
	}

	return Clause{Number: number}, true
}

// fetchFallback downloads the published contract page, strips it to plain
// text and re-runs extraction. Any failure degrades to "not found".
func (f *Finder) fetchFallback(ctx context.Context, number string) string {
	if f.fallbackURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.fallbackURL, nil)
	if err != nil {
		slog.Warn("clause: building fallback request failed", "error", err)
		return ""
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Warn("clause: fallback fetch failed", "url", f.fallbackURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("clause: fallback fetch returned non-2xx", "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		slog.Warn("clause: reading fallback body failed", "error", err)
		return ""
	}

	return extract(stripHTML(string(body)), number)
}

// extract scans text line by line for the clause heading and accumulates
// lines until the next numbered heading begins. Returns "" when the clause
// number never appears.
func extract(text, number string) string {
	lines := strings.Split(text, "\n")

	var body []string
	collecting := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !collecting {
			if line != "" && strings.Contains(line, number) {
				collecting = true
				body = append(body, line)
			}
			continue
		}
		if line == "" {
			continue
		}
		if m := headingStart.FindString(line); m != "" && m != number {
			break
		}
		body = append(body, line)
	}

	return strings.TrimSpace(strings.Join(body, "\n"))
}

// stripHTML reduces an HTML document to its visible text, one block
// element per line.
func stripHTML(doc string) string {
	tok := html.NewTokenizer(strings.NewReader(doc))
	var sb strings.Builder
	skip := 0
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				sb.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				sb.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				sb.WriteString(string(tok.Text()))
			}
		}
	}
}

// NotFoundMessage is the fixed answer for an unresolvable clause reference.
func NotFoundMessage(number string) string {
	return fmt.Sprintf("Clause %s is not present in our current contract.", number)
}

// AnswerMessage renders a resolved clause.
func AnswerMessage(c Clause) string {
	return fmt.Sprintf("Clause %s: %s", c.Number, c.Text)
}
