package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"document-insight/internal/domain"

	rpdf "rsc.io/pdf"
)

// tableKeywords gates table detection; it is the most expensive stage and is
// skipped when nothing in the document's embedded text hints at tabular data.
var tableKeywords = []string{"table", "total", "amount", "price", "qty", "invoice"}

// Clustering tolerances in PDF points.
const (
	rowTolerance  = 2.0  // text items within this vertical distance share a row
	cellGap       = 12.0 // horizontal gap starting a new cell
	glyphGap      = 1.0  // horizontal gap that still joins the same word
	minTableRows  = 2
	minTableCells = 2
)

// PDFTableExtractor detects tabular regions in PDF-backed documents by
// clustering the PDF's positioned text into rows and aligned cells. It works
// on the document source directly, independent of OCR.
type PDFTableExtractor struct {
	logger domain.Logger
}

func NewPDFTableExtractor(logger domain.Logger) *PDFTableExtractor {
	return &PDFTableExtractor{logger: logger}
}

// ExtractTables returns the row records of every detected table. Non-PDF
// inputs and documents whose embedded text carries no table-indicative
// keyword short-circuit to an empty result. Malformed PDFs surface as an
// error for the caller to absorb; the underlying parser may panic, which is
// converted to an error here.
func (x *PDFTableExtractor) ExtractTables(ctx context.Context, pdfPath string) (records []domain.TableRecord, err error) {
	if !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("table detection failed: %v", r)
		}
	}()

	reader, err := rpdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for table detection: %w", err)
	}

	numPages := reader.NumPage()
	pageChunks := make([][]textChunk, 0, numPages)
	var aggregate strings.Builder

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pageChunks = append(pageChunks, nil)
			continue
		}
		chunks := collectChunks(page)
		pageChunks = append(pageChunks, chunks)
		for _, c := range chunks {
			aggregate.WriteString(c.s)
			aggregate.WriteByte(' ')
		}
	}

	if !containsTableKeyword(aggregate.String()) {
		x.logger.Debug("no table-indicative keywords, skipping table detection", "path", pdfPath)
		return nil, nil
	}

	for pageNum, chunks := range pageChunks {
		rows := assembleRows(chunks, rowTolerance, cellGap, glyphGap)
		for i, table := range detectTables(rows, minTableRows, minTableCells) {
			records = append(records, domain.TableRecord{
				Page:  pageNum + 1,
				Index: i,
				Rows:  table,
			})
		}
	}
	return records, nil
}

func containsTableKeyword(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range tableKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// textChunk is one positioned text item from the PDF content stream.
type textChunk struct {
	x, y, w float64
	s       string
}

func collectChunks(page rpdf.Page) []textChunk {
	content := page.Content()
	chunks := make([]textChunk, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		chunks = append(chunks, textChunk{x: t.X, y: t.Y, w: t.W, s: t.S})
	}
	return chunks
}

// tableRow is one baseline row of cell texts, left to right.
type tableRow struct {
	y     float64
	cells []string
}

// assembleRows clusters chunks sharing a baseline (within rowTol) into rows,
// then splits each row into cells wherever the horizontal gap exceeds
// cellGap. Gaps above glyphGap but below cellGap separate words of the same
// cell.
func assembleRows(chunks []textChunk, rowTol, cellGap, glyphGap float64) []tableRow {
	if len(chunks) == 0 {
		return nil
	}
	sorted := make([]textChunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y // PDF y grows upward
		}
		return sorted[i].x < sorted[j].x
	})

	var rows []tableRow
	var current []textChunk
	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool { return current[i].x < current[j].x })
		rows = append(rows, tableRow{y: current[0].y, cells: splitCells(current, cellGap, glyphGap)})
		current = nil
	}

	rowY := sorted[0].y
	for _, c := range sorted {
		if rowY-c.y > rowTol {
			flush()
			rowY = c.y
		}
		current = append(current, c)
	}
	flush()
	return rows
}

func splitCells(row []textChunk, cellGap, glyphGap float64) []string {
	var cells []string
	var b strings.Builder
	prevEnd := 0.0

	for i, c := range row {
		if i > 0 {
			gap := c.x - prevEnd
			switch {
			case gap > cellGap:
				cells = append(cells, strings.TrimSpace(b.String()))
				b.Reset()
			case gap > glyphGap:
				b.WriteByte(' ')
			}
		}
		b.WriteString(c.s)
		prevEnd = c.x + c.w
	}
	if b.Len() > 0 {
		cells = append(cells, strings.TrimSpace(b.String()))
	}
	return cells
}

// detectTables finds blocks of consecutive rows that all have at least
// minCells cells; a block of at least minRows rows is a table. The first row
// provides column names; rows map column name to cell value.
func detectTables(rows []tableRow, minRows, minCells int) [][]map[string]string {
	var tables [][]map[string]string
	var block []tableRow

	emit := func() {
		if len(block) >= minRows {
			tables = append(tables, buildTable(block))
		}
		block = nil
	}

	for _, row := range rows {
		if len(row.cells) >= minCells {
			block = append(block, row)
			continue
		}
		emit()
	}
	emit()
	return tables
}

func buildTable(block []tableRow) []map[string]string {
	header := make([]string, len(block[0].cells))
	seen := make(map[string]int, len(header))
	for i, name := range block[0].cells {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}
		header[i] = name
	}

	records := make([]map[string]string, 0, len(block)-1)
	for _, row := range block[1:] {
		record := make(map[string]string, len(row.cells))
		for i, cell := range row.cells {
			key := fmt.Sprintf("col_%d", i)
			if i < len(header) {
				key = header[i]
			}
			record[key] = cell
		}
		records = append(records, record)
	}
	return records
}
