package service

import (
	"regexp"
	"strings"

	"document-insight/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`\b[\w.\-]+@[\w.\-]+\.\w+\b`)
	// 7 to 15 consecutive digits; a conservative proxy that accepts false
	// positives over false negatives.
	phonePattern = regexp.MustCompile(`\b\d{7,15}\b`)
	urlPattern   = regexp.MustCompile(`(?:https?://|www\.)\S+`)
)

// Key/value field acceptance bounds. Lines whose key or value fall outside
// these filter out accidental colons inside prose.
const (
	minKeyLen   = 2
	maxKeyLen   = 40
	minValueLen = 1
	maxValueLen = 100
)

// FieldExtractor derives key-value fields, contact entities, and the
// document-type label from canonical page text.
type FieldExtractor struct {
	dedupeContacts bool
}

func NewFieldExtractor(dedupeContacts bool) *FieldExtractor {
	return &FieldExtractor{dedupeContacts: dedupeContacts}
}

// KeyValues extracts colon-delimited fields from the text's lines, splitting
// each line at its first colon. Duplicate keys resolve last-write-wins.
func (f *FieldExtractor) KeyValues(text string) map[string]string {
	kv := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		// A value starting with "//" is a URL scheme remnant
		// ("http://host:port/..."), not a field.
		if strings.HasPrefix(value, "//") {
			continue
		}
		if kl := len([]rune(key)); kl <= minKeyLen || kl >= maxKeyLen {
			continue
		}
		if vl := len([]rune(value)); vl <= minValueLen || vl >= maxValueLen {
			continue
		}
		kv[key] = value
	}
	return kv
}

// Contacts applies the email, phone and URL recognizer patterns over the
// whole text. Match order is preserved; duplicates are kept unless
// deduplication was configured, since raw scans favor recall.
func (f *FieldExtractor) Contacts(text string) domain.Contacts {
	emails := emailPattern.FindAllString(text, -1)
	phones := phonePattern.FindAllString(text, -1)

	urls := urlPattern.FindAllString(text, -1)
	for i, u := range urls {
		urls[i] = strings.TrimRight(u, `.,;:!?)"'`)
	}

	if f.dedupeContacts {
		emails = dedupePreservingOrder(emails)
		phones = dedupePreservingOrder(phones)
		urls = dedupePreservingOrder(urls)
	}

	return domain.Contacts{
		Emails: emptyIfNil(emails),
		Phones: emptyIfNil(phones),
		URLs:   emptyIfNil(urls),
	}
}

// DocumentType classifies the page text into certificate, form, or generic.
func (f *FieldExtractor) DocumentType(text string) domain.DocumentType {
	t := strings.ToLower(text)
	if strings.Contains(t, "certificate") || strings.Contains(t, "has successfully completed") {
		return domain.DocTypeCertificate
	}
	if strings.Contains(t, ":") && strings.Contains(t, "date") {
		return domain.DocTypeForm
	}
	return domain.DocTypeGeneric
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
