package composer

import "strings"

// Budget accumulates text up to a fixed character limit. The limit is a
// hard cut: the piece that crosses it is truncated mid-string. That is
// acceptable here because the accumulated text is background context for
// the model, not the final answer.
type Budget struct {
	sb    strings.Builder
	limit int
}

// NewBudget creates an accumulator with the given character limit.
// A limit <= 0 means unlimited.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Append adds text, truncating at the limit. Returns false once the
// budget is exhausted and nothing more can be appended.
func (b *Budget) Append(text string) bool {
	if b.limit <= 0 {
		b.sb.WriteString(text)
		return true
	}
	remaining := b.limit - b.sb.Len()
	if remaining <= 0 {
		return false
	}
	if len(text) > remaining {
		b.sb.WriteString(text[:remaining])
		return false
	}
	b.sb.WriteString(text)
	return true
}

// Len returns the number of characters accumulated so far.
func (b *Budget) Len() int { return b.sb.Len() }

// String returns the accumulated text.
func (b *Budget) String() string { return b.sb.String() }
