package service

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"already clean", "INVOICE\nTotal: 120", "INVOICE\nTotal: 120"},
		{"horizontal runs collapse", "Total:   120\tUSD", "Total: 120 USD"},
		{"newline runs collapse", "INVOICE\n\n\nTotal: 120", "INVOICE\nTotal: 120"},
		{"windows line endings", "a b\r\nc d", "a b\nc d"},
		{"bare carriage return", "a b\rc d", "a b\nc d"},
		{"surrounding whitespace trimmed", "  \n  Hello World  \n ", "Hello World"},
		{"blank lines dropped", "one\n   \ntwo", "one\ntwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
			if again := NormalizeText(got); again != got {
				t.Fatalf("not idempotent: %q became %q", got, again)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single sentence without terminator", "Hello World", []string{"Hello World"}},
		{"two sentences", "First one. Second one.", []string{"First one.", "Second one."}},
		{"punctuation stays attached", "Really? Yes! Fine.", []string{"Really?", "Yes!", "Fine."}},
		{"dot inside token does not split", "Mail a@b.com today", []string{"Mail a@b.com today"}},
		{"newline counts as whitespace", "Done.\nNext", []string{"Done.", "Next"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNonWhitespaceLen(t *testing.T) {
	if n := nonWhitespaceLen("  a b\nc  "); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	if n := nonWhitespaceLen("   \n\t"); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}

func TestDedupePreservingOrder(t *testing.T) {
	got := dedupePreservingOrder([]string{"b", "a", "b", "c", "a"})
	expected := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}
