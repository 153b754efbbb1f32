package service

import (
	"reflect"
	"strings"
	"testing"
)

func TestAbstractMatchesKeywordSentences(t *testing.T) {
	b := NewAbstractBuilder()

	text := "The invoice covers March. Payment is due April 1. Nothing else matters."
	abstract := b.Build(text, []string{"Invoice", "payment"})

	if !reflect.DeepEqual(abstract.Keywords, []string{"Invoice", "payment"}) {
		t.Fatalf("unexpected keywords: %v", abstract.Keywords)
	}
	expected := []string{"The invoice covers March.", "Payment is due April 1."}
	if !reflect.DeepEqual(abstract.EvidenceSentences, expected) {
		t.Fatalf("unexpected evidence: %v", abstract.EvidenceSentences)
	}
	if abstract.Summary != strings.Join(expected, " ") {
		t.Fatalf("unexpected summary: %q", abstract.Summary)
	}
}

func TestAbstractFallbackWhenNothingMatches(t *testing.T) {
	b := NewAbstractBuilder()

	tests := []struct {
		name     string
		text     string
		keywords []string
	}{
		{"no keywords", "Some document text.", nil},
		{"no matches", "Some document text.", []string{"zebra"}},
		{"empty text", "", []string{"zebra"}},
		{"blank keywords", "Some document text.", []string{" ", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abstract := b.Build(tt.text, tt.keywords)
			if abstract.Summary != fallbackSummary {
				t.Fatalf("expected fallback summary, got %q", abstract.Summary)
			}
			if len(abstract.EvidenceSentences) != 0 {
				t.Fatalf("expected no evidence, got %v", abstract.EvidenceSentences)
			}
			if abstract.Keywords == nil {
				t.Fatal("expected keywords to encode as an array, got nil")
			}
		})
	}
}

func TestAbstractCapsSummaryAndEvidence(t *testing.T) {
	b := NewAbstractBuilder()

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("Sentence about tax number ")
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString(". ")
	}
	abstract := b.Build(sb.String(), []string{"tax"})

	if len(abstract.EvidenceSentences) != 6 {
		t.Fatalf("expected evidence capped at 6, got %d", len(abstract.EvidenceSentences))
	}
	summarySentences := SplitSentences(abstract.Summary)
	if len(summarySentences) != 4 {
		t.Fatalf("expected summary capped at 4 sentences, got %d", len(summarySentences))
	}
	// Summary sentences are the leading evidence sentences.
	if !reflect.DeepEqual(summarySentences, abstract.EvidenceSentences[:4]) {
		t.Fatalf("summary %v does not lead evidence %v", summarySentences, abstract.EvidenceSentences)
	}
}
