package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"document-insight/internal/domain"
	apperrors "document-insight/pkg/errors"
)

// ParseKeywords splits a comma-separated keyword string into trimmed,
// non-empty keywords.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

// Pipeline runs one document through every processing stage and assembles the
// final Result. Pages are processed concurrently with a bounded worker pool;
// table extraction runs alongside them since it reads the source PDF, not the
// recognized text.
type Pipeline struct {
	rasterizer   domain.Rasterizer
	preprocessor *Preprocessor
	fusion       *FusionEngine
	layout       *LayoutAnalyzer
	fields       *FieldExtractor
	tables       domain.TableProvider
	results      domain.ResultRepository
	mirror       domain.ResultRepository
	logger       domain.Logger

	workers int
	timeout time.Duration
}

func NewPipeline(
	rasterizer domain.Rasterizer,
	preprocessor *Preprocessor,
	fusion *FusionEngine,
	layout *LayoutAnalyzer,
	fields *FieldExtractor,
	tables domain.TableProvider,
	results domain.ResultRepository,
	mirror domain.ResultRepository,
	cfg domain.Config,
	logger domain.Logger,
) *Pipeline {
	workers := cfg.GetPageWorkers()
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		rasterizer:   rasterizer,
		preprocessor: preprocessor,
		fusion:       fusion,
		layout:       layout,
		fields:       fields,
		tables:       tables,
		results:      results,
		mirror:       mirror,
		logger:       logger,
		workers:      workers,
		timeout:      cfg.GetProcessTimeout(),
	}
}

// Process runs the full pipeline over the document at path. The whole
// invocation is bounded by the configured timeout; exceeding it fails the
// document. A failed persist does not fail the invocation, the assembled
// result is still returned.
func (p *Pipeline) Process(ctx context.Context, path string, keywords []string) (*domain.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Info("document ingested", "path", path, "stage", domain.StageIngested)

	raster, err := p.rasterizer.Rasterize(ctx, path)
	if err != nil {
		p.logger.Error("rasterization failed", err, "path", path, "stage", domain.StageFailed)
		return nil, err
	}
	defer raster.Close()

	p.logger.Info("document rasterized",
		"path", path, "kind", raster.Document.Kind, "pages", len(raster.Pages), "stage", domain.StageRasterized)

	var tables []domain.TableRecord
	tablesDone := make(chan struct{})
	go func() {
		defer close(tablesDone)
		tables = p.extractTables(ctx, raster.Document)
	}()

	structured := make([]domain.StructuredPage, len(raster.Pages))
	canonical := make([]string, len(raster.Pages))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.workers)
	for i, page := range raster.Pages {
		i, page := i, page
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := gctx.Err(); err != nil {
				return err
			}
			sp, text := p.processPage(gctx, page)
			// A deadline expiring mid-page leaves a partially recognized
			// page behind; discard it and fail the invocation.
			if err := gctx.Err(); err != nil {
				return err
			}
			structured[i] = sp
			canonical[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("page processing aborted", err, "path", path, "stage", domain.StageFailed)
		return nil, apperrors.NewProcessingError("document processing timed out or was canceled", err)
	}

	<-tablesDone
	// Table extraction runs concurrently and absorbs its own failures; an
	// expired deadline must still fail the invocation rather than assemble a
	// degraded result.
	if err := ctx.Err(); err != nil {
		p.logger.Error("processing deadline exceeded", err, "path", path, "stage", domain.StageFailed)
		return nil, apperrors.NewProcessingError("document processing timed out or was canceled", err)
	}
	p.logger.Info("tables extracted", "path", path, "count", len(tables), "stage", domain.StageTablesExtracted)

	abstract := p.buildAbstract(canonical, keywords)
	p.logger.Info("abstract built",
		"path", path, "keywords", len(keywords), "evidence", len(abstract.EvidenceSentences), "stage", domain.StageAbstractBuilt)

	result, err := assemble(abstract, tables, structured)
	if err != nil {
		p.logger.Error("result assembly failed", err, "path", path, "stage", domain.StageFailed)
		return nil, err
	}
	p.logger.Info("result assembled", "path", path, "pages", len(result.Pages), "stage", domain.StageAssembled)

	p.persist(ctx, result)
	return result, nil
}

// processPage derives the preprocessed variants, recognizes the canonical
// text, and extracts every per-page structure. It never fails; a page that
// yields no text produces an empty StructuredPage.
func (p *Pipeline) processPage(ctx context.Context, page *domain.Page) (domain.StructuredPage, string) {
	page.Variants = p.preprocessor.Variants(page.Image)

	text := p.fusion.CanonicalText(ctx, page)
	paragraphs := p.layout.Paragraphs(text)
	if p.fusion.Mode() == FusionConcat {
		// Concatenated engine outputs overlap and disagree on symbols;
		// sanitize the assembled paragraphs before reporting them.
		paragraphs = p.layout.CleanParagraphs(paragraphs)
	}
	left, right := p.fusion.ColumnTexts(ctx, page)

	sp := domain.StructuredPage{
		Page:         page.Index,
		DocumentType: p.fields.DocumentType(text),
		Headings:     p.layout.Headings(text),
		Paragraphs:   paragraphs,
		KeyValues:    p.fields.KeyValues(text),
		Contacts:     p.fields.Contacts(text),
		Columns:      p.layout.Columns(left, right, paragraphs),
		RawText:      text,
	}
	p.logger.Debug("page processed",
		"page", page.Index, "chars", len(text), "stage", domain.StagePageProcessed)
	return sp, text
}

// extractTables degrades table failures to an empty result; tables are
// supplementary and must never fail the document.
func (p *Pipeline) extractTables(ctx context.Context, doc domain.Document) []domain.TableRecord {
	if doc.SourcePDF == "" {
		return nil
	}
	tables, err := p.tables.ExtractTables(ctx, doc.SourcePDF)
	if err != nil {
		p.logger.Warn("table extraction degraded to empty", "path", doc.SourcePDF, "error", err.Error())
		return nil
	}
	return tables
}

func (p *Pipeline) buildAbstract(canonical []string, keywords []string) domain.Abstract {
	builder := NewAbstractBuilder()
	return builder.Build(strings.Join(canonical, "\n"), keywords)
}

// assemble orders pages by index and validates the sequence is gap-free
// starting at 1. Nil collections are replaced with empty ones so the JSON
// encoding always carries arrays and objects.
func assemble(abstract domain.Abstract, tables []domain.TableRecord, pages []domain.StructuredPage) (*domain.Result, error) {
	sorted := make([]domain.StructuredPage, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	for i := range sorted {
		if sorted[i].Page != i+1 {
			return nil, apperrors.NewAssemblyError(
				fmt.Sprintf("page sequence broken: expected page %d, found %d", i+1, sorted[i].Page), nil)
		}
		sorted[i].Headings = emptyIfNil(sorted[i].Headings)
		sorted[i].Paragraphs = emptyIfNil(sorted[i].Paragraphs)
		sorted[i].Columns = emptyIfNil(sorted[i].Columns)
		sorted[i].Contacts.Emails = emptyIfNil(sorted[i].Contacts.Emails)
		sorted[i].Contacts.Phones = emptyIfNil(sorted[i].Contacts.Phones)
		sorted[i].Contacts.URLs = emptyIfNil(sorted[i].Contacts.URLs)
		if sorted[i].KeyValues == nil {
			sorted[i].KeyValues = map[string]string{}
		}
	}

	if tables == nil {
		tables = []domain.TableRecord{}
	}
	return &domain.Result{
		Abstract: abstract,
		Tables:   tables,
		Pages:    sorted,
	}, nil
}

// persist writes the result through the primary repository and, when
// configured, the mirror. Persistence failures are logged and swallowed.
func (p *Pipeline) persist(ctx context.Context, result *domain.Result) {
	if p.results != nil {
		location, err := p.results.Save(ctx, result)
		if err != nil {
			p.logger.Warn("result persistence failed", "error", err.Error())
		} else {
			p.logger.Info("result persisted", "location", location)
		}
	}
	if p.mirror != nil {
		location, err := p.mirror.Save(ctx, result)
		if err != nil {
			p.logger.Warn("result mirror upload failed", "error", err.Error())
		} else {
			p.logger.Info("result mirrored", "location", location)
		}
	}
}
