package service

import (
	"reflect"
	"strings"
	"testing"

	"document-insight/internal/domain"
)

func TestKeyValues(t *testing.T) {
	f := NewFieldExtractor(false)

	tests := []struct {
		name     string
		text     string
		expected map[string]string
	}{
		{
			"simple fields",
			"Name: John Doe\nTotal: 120",
			map[string]string{"Name": "John Doe", "Total": "120"},
		},
		{
			"split at first colon only",
			"Time: 10:30",
			map[string]string{"Time": "10:30"},
		},
		{
			"url line rejected",
			"http://example.com:8080/path",
			map[string]string{},
		},
		{
			"key too short",
			"No: value here",
			map[string]string{},
		},
		{
			"key too long",
			strings.Repeat("k", 40) + ": value",
			map[string]string{},
		},
		{
			"value too short",
			"Grade: A",
			map[string]string{},
		},
		{
			"value too long",
			"Note: " + strings.Repeat("v", 100),
			map[string]string{},
		},
		{
			"no colon",
			"just a line of prose",
			map[string]string{},
		},
		{
			"duplicate key last write wins",
			"Total: 100\nTotal: 200",
			map[string]string{"Total": "200"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.KeyValues(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestContacts(t *testing.T) {
	f := NewFieldExtractor(false)

	text := "Reach us at info@example.com or 12345678.\n" +
		"More info: https://example.com/about, also www.example.org\n" +
		"Backup mail info@example.com"

	contacts := f.Contacts(text)

	if !reflect.DeepEqual(contacts.Emails, []string{"info@example.com", "info@example.com"}) {
		t.Fatalf("unexpected emails: %v", contacts.Emails)
	}
	if !reflect.DeepEqual(contacts.Phones, []string{"12345678"}) {
		t.Fatalf("unexpected phones: %v", contacts.Phones)
	}
	// Trailing punctuation belongs to the sentence, not the URL.
	if !reflect.DeepEqual(contacts.URLs, []string{"https://example.com/about", "www.example.org"}) {
		t.Fatalf("unexpected urls: %v", contacts.URLs)
	}
}

func TestContactsDedup(t *testing.T) {
	f := NewFieldExtractor(true)
	contacts := f.Contacts("a@b.com a@b.com 12345678 12345678")
	if !reflect.DeepEqual(contacts.Emails, []string{"a@b.com"}) {
		t.Fatalf("unexpected emails: %v", contacts.Emails)
	}
	if !reflect.DeepEqual(contacts.Phones, []string{"12345678"}) {
		t.Fatalf("unexpected phones: %v", contacts.Phones)
	}
}

func TestContactsEmptyText(t *testing.T) {
	f := NewFieldExtractor(false)
	contacts := f.Contacts("")
	if contacts.Emails == nil || contacts.Phones == nil || contacts.URLs == nil {
		t.Fatalf("expected empty slices, got %+v", contacts)
	}
	if len(contacts.Emails)+len(contacts.Phones)+len(contacts.URLs) != 0 {
		t.Fatalf("expected no contacts, got %+v", contacts)
	}
}

func TestPhonePatternBounds(t *testing.T) {
	f := NewFieldExtractor(false)
	contacts := f.Contacts("short 123456 long 1234567890123456 ok 1234567")
	if !reflect.DeepEqual(contacts.Phones, []string{"1234567"}) {
		t.Fatalf("unexpected phones: %v", contacts.Phones)
	}
}

func TestDocumentType(t *testing.T) {
	f := NewFieldExtractor(false)

	tests := []struct {
		name     string
		text     string
		expected domain.DocumentType
	}{
		{"certificate keyword", "Certificate of Achievement", domain.DocTypeCertificate},
		{"completion phrase", "Jane has successfully completed the course", domain.DocTypeCertificate},
		{"form with date field", "Name: Jane\nDate: 2024-01-01", domain.DocTypeForm},
		{"colon without date", "Total: 120", domain.DocTypeGeneric},
		{"plain prose", "Nothing structured here", domain.DocTypeGeneric},
		{"certificate wins over form", "Certificate\nDate: 2024-01-01", domain.DocTypeCertificate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.DocumentType(tt.text); got != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
