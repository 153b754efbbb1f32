package service

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"document-insight/internal/domain"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
)

// FitzRasterizer renders input documents to page rasters. PDFs are rendered
// page by page at a fixed DPI; single images pass through decoded; slide
// decks are converted to PDF first via LibreOffice.
type FitzRasterizer struct {
	dpi         float64
	sofficePath string
	logger      domain.Logger
}

// NewRasterizer creates a rasterizer from configuration.
func NewRasterizer(cfg domain.Config, logger domain.Logger) *FitzRasterizer {
	return &FitzRasterizer{
		dpi:         cfg.GetRasterDPI(),
		sofficePath: cfg.GetSofficePath(),
		logger:      logger,
	}
}

// Rasterize classifies the input by extension and produces its ordered page
// rasters. Unknown extensions fail with domain.ErrUnsupportedFormat; a failed
// slide-deck conversion fails with domain.ErrConversionFailed. Intermediate
// files live in a uniquely named work directory released by Close on the
// returned output.
func (r *FitzRasterizer) Rasterize(ctx context.Context, path string) (*domain.RasterOutput, error) {
	ext := strings.ToLower(filepath.Ext(path))
	doc := domain.Document{Path: path}

	switch ext {
	case ".pdf":
		doc.Kind = domain.KindPDF
		doc.SourcePDF = path
		pages, err := r.rasterizePDF(ctx, path)
		if err != nil {
			return nil, err
		}
		return &domain.RasterOutput{Document: doc, Pages: pages}, nil

	case ".png", ".jpg", ".jpeg":
		doc.Kind = domain.KindImage
		page, err := r.loadImage(path)
		if err != nil {
			return nil, err
		}
		return &domain.RasterOutput{Document: doc, Pages: []*domain.Page{page}}, nil

	case ".pptx":
		doc.Kind = domain.KindSlideDeck
		// Unique per-invocation work dir so parallel invocations never
		// collide on converted artifacts.
		workDir := filepath.Join(os.TempDir(), "docscan-"+uuid.NewString())
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating work dir: %v", domain.ErrConversionFailed, err)
		}
		cleanup := func() { _ = os.RemoveAll(workDir) }

		converted, err := r.convertToPDF(ctx, path, workDir)
		if err != nil {
			cleanup()
			return nil, err
		}
		doc.SourcePDF = converted
		pages, err := r.rasterizePDF(ctx, converted)
		if err != nil {
			cleanup()
			return nil, err
		}
		return &domain.RasterOutput{Document: doc, Pages: pages, Cleanup: cleanup}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}

func (r *FitzRasterizer) rasterizePDF(ctx context.Context, path string) ([]*domain.Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]*domain.Page, 0, numPages)
	for n := 0; n < numPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, r.dpi)
		if err != nil {
			// A single unrenderable page degrades to an empty page so the
			// 1-based page sequence stays gap-free.
			r.logger.Warn("failed to render page, substituting empty raster", "page", n+1, "error", err)
			img = image.NewRGBA(image.Rect(0, 0, 0, 0))
		}
		pages = append(pages, &domain.Page{Index: n + 1, Image: img})
	}
	return pages, nil
}

func (r *FitzRasterizer) loadImage(path string) (*domain.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", domain.ErrInvalidFile, err)
	}
	return &domain.Page{Index: 1, Image: img}, nil
}

// convertToPDF invokes the configured LibreOffice binary headlessly. The
// converted file lands in workDir under the input's base name.
func (r *FitzRasterizer) convertToPDF(ctx context.Context, path, workDir string) (string, error) {
	cmd := exec.CommandContext(ctx, r.sofficePath, "--headless", "--convert-to", "pdf", "--outdir", workDir, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %v: %s", domain.ErrConversionFailed, err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	converted := filepath.Join(workDir, base+".pdf")
	if _, err := os.Stat(converted); err != nil {
		return "", fmt.Errorf("%w: converted file missing: %v", domain.ErrConversionFailed, err)
	}
	r.logger.Debug("slide deck converted", "source", path, "pdf", converted)
	return converted, nil
}
