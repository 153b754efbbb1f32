package service

import (
	"strings"

	"document-insight/internal/domain"
)

const fallbackSummary = "The document content is limited. Provided keywords indicate the primary subject matter."

// AbstractBuilder derives a keyword-driven abstract from the full document
// text: sentences mentioning any keyword become evidence, and the leading
// ones form the summary.
type AbstractBuilder struct {
	maxSummary  int
	maxEvidence int
}

func NewAbstractBuilder() *AbstractBuilder {
	return &AbstractBuilder{maxSummary: 4, maxEvidence: 6}
}

// Build matches keywords against sentences case-insensitively by substring.
// With no matches, or no keywords at all, the summary falls back to a fixed
// statement and the evidence list stays empty.
func (b *AbstractBuilder) Build(text string, keywords []string) domain.Abstract {
	abstract := domain.Abstract{
		Keywords:          append([]string{}, keywords...),
		EvidenceSentences: []string{},
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	var matched []string
	if len(lowered) > 0 {
		for _, sentence := range SplitSentences(text) {
			ls := strings.ToLower(sentence)
			for _, kw := range lowered {
				if strings.Contains(ls, kw) {
					matched = append(matched, strings.TrimSpace(sentence))
					break
				}
			}
		}
	}

	if len(matched) == 0 {
		abstract.Summary = fallbackSummary
		return abstract
	}

	summaryCount := b.maxSummary
	if summaryCount > len(matched) {
		summaryCount = len(matched)
	}
	abstract.Summary = strings.Join(matched[:summaryCount], " ")

	evidenceCount := b.maxEvidence
	if evidenceCount > len(matched) {
		evidenceCount = len(matched)
	}
	abstract.EvidenceSentences = matched[:evidenceCount]
	return abstract
}
