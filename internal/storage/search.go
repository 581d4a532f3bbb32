package storage

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// SearchKnowledgeDocs runs a token-based relevance search over the
// extracted text of all knowledge documents. The query is split into
// words; documents matching at least one word are ranked by how many
// distinct words they contain, ties broken by recency. Returns at most
// limit documents.
func (s *Store) SearchKnowledgeDocs(ctx context.Context, query string, limit int) ([]KnowledgeDoc, error) {
	tokens := searchTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, file_url, file_type, extracted_text, uploaded_at
		FROM knowledge_docs ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs, err := scanKnowledgeDocs(rows)
	if err != nil {
		return nil, err
	}

	type scored struct {
		doc  KnowledgeDoc
		hits int
	}
	var matches []scored
	for _, d := range docs {
		text := strings.ToLower(d.ExtractedText)
		hits := 0
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, scored{doc: d, hits: hits})
		}
	}

	// Stable sort keeps the recency ordering from the query within equal
	// hit counts.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].hits > matches[j].hits
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	results := make([]KnowledgeDoc, len(matches))
	for i, m := range matches {
		results[i] = m.doc
	}
	return results, nil
}

// DocsContaining returns the extracted text of documents containing the
// given substring, most recently uploaded first. Used by the clause
// extractor.
func (s *Store) DocsContaining(ctx context.Context, substr string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT extracted_text FROM knowledge_docs
		WHERE instr(extracted_text, ?) > 0
		ORDER BY uploaded_at DESC`, substr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// searchTokens lower-cases the query and keeps alphanumeric words longer
// than two characters, so stop-word noise ("a", "of", "is") doesn't match
// everything.
func searchTokens(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var tokens []string
	for _, w := range words {
		if len(w) > 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
