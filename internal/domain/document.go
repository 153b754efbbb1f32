package domain

import (
	"encoding/json"
	"image"
)

// DocumentKind discriminates the supported input formats.
type DocumentKind string

const (
	KindImage     DocumentKind = "image"
	KindPDF       DocumentKind = "pdf"
	KindSlideDeck DocumentKind = "slide-deck"
)

// Document is the ingested input artifact. It is immutable once created;
// downstream stages only read from it.
type Document struct {
	Path string
	Kind DocumentKind

	// SourcePDF is the path table extraction reads from: the input itself for
	// PDF documents, the converted PDF for slide decks, empty for images.
	SourcePDF string
}

// VariantKind names a preprocessed rendition of a page raster. Each kind is
// consumed by exactly one recognition purpose.
type VariantKind string

const (
	VariantGray   VariantKind = "gray"
	VariantBinary VariantKind = "binary"
	VariantLeft   VariantKind = "left"
	VariantRight  VariantKind = "right"
)

// Page is one rasterized unit of a Document. Index is 1-based and matches
// source page order. Variants are derived once by the preprocessor and never
// edited afterwards.
type Page struct {
	Index    int
	Image    image.Image
	Variants map[VariantKind]image.Image
}

// Variant returns the named preprocessed rendition, or nil if it was not
// produced (degenerate source raster).
func (p *Page) Variant(kind VariantKind) image.Image {
	if p == nil || p.Variants == nil {
		return nil
	}
	return p.Variants[kind]
}

// RasterOutput is the rasterizer's result: the classified document plus its
// ordered page rasters. Close releases any intermediate files the rasterizer
// materialized for this invocation.
type RasterOutput struct {
	Document Document
	Pages    []*Page

	Cleanup func()
}

func (o *RasterOutput) Close() {
	if o != nil && o.Cleanup != nil {
		o.Cleanup()
	}
}

// DocumentType is the coarse classification label derived from a page's text.
type DocumentType string

const (
	DocTypeCertificate DocumentType = "certificate"
	DocTypeForm        DocumentType = "form"
	DocTypeGeneric     DocumentType = "generic"
)

// Contacts holds the contact entities recognized on a page. Duplicates are
// preserved by default; raw scans favor recall.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	URLs   []string `json:"urls"`
}

// StructuredPage is the fully analyzed form of one page, derived entirely
// from that page's canonical text. Immutable once built.
type StructuredPage struct {
	Page         int               `json:"page"`
	DocumentType DocumentType      `json:"document_type"`
	Headings     []string          `json:"headings"`
	Paragraphs   []string          `json:"paragraphs"`
	KeyValues    map[string]string `json:"key_values"`
	Contacts     Contacts          `json:"contacts"`
	Columns      []string          `json:"columns"`
	RawText      string            `json:"raw_text"`
}

// TableRecord is one extracted table: ordered row mappings of column name to
// cell value, plus the page and table ordinal it came from. The JSON form is
// just the row array, per the output contract; page and table index are
// carried for logging only.
type TableRecord struct {
	Page  int
	Index int
	Rows  []map[string]string
}

func (t TableRecord) MarshalJSON() ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = []map[string]string{}
	}
	return json.Marshal(rows)
}

func (t *TableRecord) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &t.Rows)
}

// Abstract is the keyword-conditioned extractive summary of the whole
// document.
type Abstract struct {
	Keywords          []string `json:"keywords"`
	Summary           string   `json:"summary"`
	EvidenceSentences []string `json:"evidence_sentences"`
}

// Result is the top-level deliverable of one document-processing invocation.
// Pages are ordered by page index ascending with no gaps.
type Result struct {
	Abstract Abstract         `json:"abstract"`
	Tables   []TableRecord    `json:"tables"`
	Pages    []StructuredPage `json:"pages"`
}

// Stage names a step of the per-invocation state machine, used for logging
// progress. Terminal stages are StageAssembled and StageFailed.
type Stage string

const (
	StageIngested        Stage = "ingested"
	StageRasterized      Stage = "rasterized"
	StagePageProcessed   Stage = "page_processed"
	StageTablesExtracted Stage = "tables_extracted"
	StageAbstractBuilt   Stage = "abstract_built"
	StageAssembled       Stage = "assembled"
	StageFailed          Stage = "failed"
)
