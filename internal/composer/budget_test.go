package composer

import (
	"strings"
	"testing"
)

func TestBudget_HardCut(t *testing.T) {
	b := NewBudget(10)
	if !b.Append("12345") {
		t.Error("first append should fit")
	}
	if b.Append("6789012345") {
		t.Error("second append crosses the limit, must report exhaustion")
	}
	if got := b.String(); got != "1234567890" {
		t.Errorf("String = %q, want hard cut at 10 chars", got)
	}
	if b.Append("more") {
		t.Error("exhausted budget must reject further appends")
	}
	if b.Len() != 10 {
		t.Errorf("Len = %d, want 10", b.Len())
	}
}

func TestBudget_Unlimited(t *testing.T) {
	b := NewBudget(0)
	long := strings.Repeat("x", 100000)
	if !b.Append(long) {
		t.Error("unlimited budget must always accept")
	}
	if b.Len() != len(long) {
		t.Errorf("Len = %d, want %d", b.Len(), len(long))
	}
}
