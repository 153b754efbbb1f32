package service

import (
	"regexp"
	"strings"
	"unicode"
)

// paragraphNoise matches characters stripped from paragraphs when multiple
// recognition outputs were concatenated; engine disagreement shows up as
// stray symbols.
var paragraphNoise = regexp.MustCompile(`[^a-zA-Z0-9 ,.]+`)

// LayoutAnalyzer splits canonical page text into headings and length-bounded
// paragraphs, and filters the column texts for multi-column layouts.
type LayoutAnalyzer struct {
	minParagraphLen  int
	minHeadingLen    int
	maxHeadingLen    int
	minHeadingAlpha  int
	minColumnLineLen int
}

// minParagraphNoiseLen is the floor below which a cleaned paragraph fragment
// is discarded as recognition noise.
const minParagraphNoiseLen = 10

func NewLayoutAnalyzer() *LayoutAnalyzer {
	return &LayoutAnalyzer{
		minParagraphLen:  250,
		minHeadingLen:    5,
		maxHeadingLen:    80,
		minHeadingAlpha:  2,
		minColumnLineLen: 5,
	}
}

// Paragraphs accumulates sentences into buffers of at least minParagraphLen
// characters, never splitting mid-sentence, and emits any non-empty
// remainder. The result is deduplicated in insertion order and contains no
// empty entries.
func (a *LayoutAnalyzer) Paragraphs(text string) []string {
	var paragraphs []string
	var b strings.Builder

	for _, sentence := range SplitSentences(text) {
		sentence = strings.Join(strings.Fields(sentence), " ")
		if sentence == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
		if b.Len() >= a.minParagraphLen {
			paragraphs = append(paragraphs, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		paragraphs = append(paragraphs, b.String())
	}
	return dedupePreservingOrder(paragraphs)
}

// CleanParagraphs sanitizes paragraphs assembled from concatenated
// recognition outputs: noise characters are replaced with spaces, whitespace
// is re-collapsed, fragments under minParagraphNoiseLen runes are dropped,
// and duplicates created by the cleaning are removed.
func (a *LayoutAnalyzer) CleanParagraphs(paragraphs []string) []string {
	var cleaned []string
	for _, p := range paragraphs {
		p = paragraphNoise.ReplaceAllString(p, " ")
		p = strings.Join(strings.Fields(p), " ")
		if len([]rune(p)) < minParagraphNoiseLen {
			continue
		}
		cleaned = append(cleaned, p)
	}
	return dedupePreservingOrder(cleaned)
}

// Headings returns the heading candidates of the text in input order.
// Candidates are the text's lines, each further split at sentence
// boundaries; a candidate qualifies when its length is in
// [minHeadingLen, maxHeadingLen), it starts with an uppercase letter, does
// not end with terminal punctuation, and contains more than minHeadingAlpha
// alphabetic characters.
func (a *LayoutAnalyzer) Headings(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		for _, candidate := range SplitSentences(line) {
			if a.isHeading(candidate) {
				headings = append(headings, candidate)
			}
		}
	}
	return headings
}

func (a *LayoutAnalyzer) isHeading(line string) bool {
	runes := []rune(line)
	if len(runes) < a.minHeadingLen || len(runes) >= a.maxHeadingLen {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	switch runes[len(runes)-1] {
	case '.', '!', '?':
		return false
	}
	alpha := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return alpha > a.minHeadingAlpha
}

// Columns filters the recognized left/right column texts: lines shorter than
// the minimum are dropped, and lines already reported among the page's
// deduplicated paragraphs are excluded to avoid double-reporting.
func (a *LayoutAnalyzer) Columns(left, right string, paragraphs []string) []string {
	known := make(map[string]struct{}, len(paragraphs))
	for _, p := range paragraphs {
		known[p] = struct{}{}
	}

	filter := func(col string) string {
		var kept []string
		for _, line := range strings.Split(col, "\n") {
			line = strings.TrimSpace(line)
			if len([]rune(line)) <= a.minColumnLineLen {
				continue
			}
			if _, ok := known[line]; ok {
				continue
			}
			kept = append(kept, line)
		}
		return strings.Join(kept, "\n")
	}

	return []string{filter(left), filter(right)}
}
