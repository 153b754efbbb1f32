package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"document-insight/internal/config"
	"document-insight/internal/domain"
	"document-insight/internal/service"
)

func newTestContainer(t *testing.T) *config.Container {
	t.Helper()
	cfg := &testConfig{uploadPath: t.TempDir(), outputPath: "outputs/output.json"}
	logger := NewMockHandlerLogger()

	fusion := service.NewFusionEngine([]service.Capability{
		{Recognizer: &stubRecognizer{}, Variant: domain.VariantBinary},
	}, cfg.GetMinTextLength(), service.FusionFallback, logger)

	pipeline := service.NewPipeline(
		&stubRasterizer{},
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
	return &config.Container{Config: cfg, Logger: logger, Pipeline: pipeline}
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := NewRouter(newTestContainer(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", rr.Body.String())
	}
}

func TestRouterProcessRoute(t *testing.T) {
	router := NewRouter(newTestContainer(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartRequest(t, "scan.png", "invoice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := NewRouter(newTestContainer(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/documents/process", nil))

	if rr.Code == http.StatusOK {
		t.Fatal("expected GET on process route to be rejected")
	}
}
