package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"document-insight/internal/domain"
	"document-insight/internal/service"
	apperrors "document-insight/pkg/errors"
)

// testConfig points uploads and output at test-owned directories.
type testConfig struct {
	uploadPath string
	outputPath string
}

func (c *testConfig) GetServerPort() string            { return "8080" }
func (c *testConfig) GetUploadPath() string            { return c.uploadPath }
func (c *testConfig) GetOutputPath() string            { return c.outputPath }
func (c *testConfig) GetMaxFileSize() int64            { return 1 << 20 }
func (c *testConfig) GetLogLevel() string              { return "error" }
func (c *testConfig) GetRasterDPI() float64            { return 200 }
func (c *testConfig) GetSofficePath() string           { return "soffice" }
func (c *testConfig) GetOCRLanguages() []string        { return []string{"eng"} }
func (c *testConfig) GetOCRMode() string               { return "fallback" }
func (c *testConfig) GetMinTextLength() int            { return 10 }
func (c *testConfig) GetPageWorkers() int              { return 2 }
func (c *testConfig) GetProcessTimeout() time.Duration { return time.Minute }
func (c *testConfig) GetContactDedup() bool            { return false }
func (c *testConfig) GetVertexProjectID() string       { return "" }
func (c *testConfig) GetVertexLocation() string        { return "" }
func (c *testConfig) GetVertexModel() string           { return "" }
func (c *testConfig) GetSupabaseURL() string           { return "" }
func (c *testConfig) GetSupabaseKey() string           { return "" }
func (c *testConfig) GetSupabaseBucket() string        { return "results" }

type stubRasterizer struct {
	err error
}

func (s *stubRasterizer) Rasterize(ctx context.Context, path string) (*domain.RasterOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RasterOutput{
		Document: domain.Document{Path: path, Kind: domain.KindImage},
		Pages: []*domain.Page{
			{Index: 1, Image: image.NewGray(image.Rect(0, 0, 10, 10))},
		},
	}, nil
}

type stubRecognizer struct{}

func (s *stubRecognizer) Name() string { return "stub" }

func (s *stubRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	return "INVOICE\nTotal: 120\nContact: a@b.com", nil
}

type stubTableProvider struct{}

func (s *stubTableProvider) ExtractTables(ctx context.Context, pdfPath string) ([]domain.TableRecord, error) {
	return nil, nil
}

type stubResultRepository struct{}

func (s *stubResultRepository) Save(ctx context.Context, result *domain.Result) (string, error) {
	return "outputs/output.json", nil
}

func newTestHandler(t *testing.T, rasterizer domain.Rasterizer) *ProcessHandler {
	t.Helper()
	cfg := &testConfig{uploadPath: t.TempDir(), outputPath: "outputs/output.json"}
	logger := NewMockHandlerLogger()

	fusion := service.NewFusionEngine([]service.Capability{
		{Recognizer: &stubRecognizer{}, Variant: domain.VariantBinary},
	}, cfg.GetMinTextLength(), service.FusionFallback, logger)

	pipeline := service.NewPipeline(
		rasterizer,
		service.NewPreprocessor(),
		fusion,
		service.NewLayoutAnalyzer(),
		service.NewFieldExtractor(false),
		&stubTableProvider{},
		&stubResultRepository{},
		nil,
		cfg,
		logger,
	)
	return NewProcessHandler(pipeline, cfg, logger)
}

func multipartRequest(t *testing.T, filename, keywords string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte("fake image bytes"))
	if keywords != "" {
		writer.WriteField("keywords", keywords)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestProcessHandlerSuccess(t *testing.T) {
	h := newTestHandler(t, &stubRasterizer{})

	rr := httptest.NewRecorder()
	h.Process(rr, multipartRequest(t, "scan.png", "invoice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result domain.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not a valid result: %v", err)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}
	if result.Pages[0].KeyValues["Total"] != "120" {
		t.Fatalf("unexpected key values: %v", result.Pages[0].KeyValues)
	}
	if len(result.Abstract.EvidenceSentences) == 0 {
		t.Fatal("expected keyword evidence in the abstract")
	}
}

func TestProcessHandlerMissingFile(t *testing.T) {
	h := newTestHandler(t, &stubRasterizer{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("keywords", "invoice")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	h.Process(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestProcessHandlerUnsupportedFormat(t *testing.T) {
	h := newTestHandler(t, &stubRasterizer{err: domain.ErrUnsupportedFormat})

	rr := httptest.NewRecorder()
	h.Process(rr, multipartRequest(t, "scan.xyz", ""))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusBadRequest},
		{"invalid file", domain.ErrInvalidFile, http.StatusBadRequest},
		{"conversion failed", domain.ErrConversionFailed, http.StatusUnprocessableEntity},
		{"processing error", apperrors.NewProcessingError("timed out", nil), http.StatusUnprocessableEntity},
		{"assembly error", apperrors.NewAssemblyError("gap", nil), http.StatusInternalServerError},
		{"unknown error", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.expected {
				t.Fatalf("expected status %d, got %d", tt.expected, got)
			}
		})
	}
}
