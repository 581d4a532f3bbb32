package clause

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeDocs struct {
	texts []string
	err   error
}

func (f *fakeDocs) DocsContaining(ctx context.Context, substr string) ([]string, error) {
	return f.texts, f.err
}

const contractText = `1 Definitions
Words mean what they say.

4.2 Termination
Either party may terminate this agreement
with 30 days written notice.

4.3 Survival
Some clauses survive termination.`

func TestReference(t *testing.T) {
	tests := []struct {
		query string
		num   string
		ok    bool
	}{
		{"what does clause 4.2 say?", "4.2", true},
		{"CLAUSE 12", "12", true},
		{"clause4.2", "4.2", true},
		{"how many merchants", "", false},
	}
	for _, tt := range tests {
		num, ok := Reference(tt.query)
		if num != tt.num || ok != tt.ok {
			t.Errorf("Reference(%q) = (%q, %v), want (%q, %v)", tt.query, num, ok, tt.num, tt.ok)
		}
	}
}

func TestFind_FromIndexedDocument(t *testing.T) {
	f := NewFinder(&fakeDocs{texts: []string{contractText}}, "")

	c, ok := f.Find(context.Background(), "please check clause 4.2")
	if !ok {
		t.Fatal("expected clause reference to be detected")
	}
	want := "4.2 Termination\nEither party may terminate this agreement\nwith 30 days written notice."
	if c.Text != want {
		t.Errorf("Text = %q, want %q", c.Text, want)
	}
	if got := AnswerMessage(c); got != "Clause 4.2: "+want {
		t.Errorf("AnswerMessage = %q", got)
	}
}

func TestFind_NoReference(t *testing.T) {
	f := NewFinder(&fakeDocs{}, "")
	if _, ok := f.Find(context.Background(), "how many live retailers"); ok {
		t.Error("expected no clause reference")
	}
}

func TestFind_FallbackFetch(t *testing.T) {
	page := `<html><head><style>body{}</style></head><body>
	<h2>4.2 Termination</h2>
	<p>Either party may terminate.</p>
	<h2>4.3 Survival</h2>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	f := NewFinder(&fakeDocs{}, srv.URL)
	c, ok := f.Find(context.Background(), "clause 4.2")
	if !ok {
		t.Fatal("expected clause reference")
	}
	want := "4.2 Termination\nEither party may terminate."
	if c.Text != want {
		t.Errorf("Text = %q, want %q", c.Text, want)
	}
}

func TestFind_NotFoundAfterFailedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFinder(&fakeDocs{err: errors.New("store down")}, srv.URL)
	c, ok := f.Find(context.Background(), "clause 99")
	if !ok {
		t.Fatal("expected clause reference")
	}
	if c.Text != "" {
		t.Errorf("expected empty text, got %q", c.Text)
	}
	if got := NotFoundMessage(c.Number); got != "Clause 99 is not present in our current contract." {
		t.Errorf("NotFoundMessage = %q", got)
	}
}

func TestExtract_StopsAtNextHeading(t *testing.T) {
	got := extract(contractText, "1")
	if got != "1 Definitions\nWords mean what they say." {
		t.Errorf("extract clause 1 = %q", got)
	}
}

func TestExtract_MissingClause(t *testing.T) {
	if got := extract(contractText, "99"); got != "" {
		t.Errorf("expected empty snippet, got %q", got)
	}
}
