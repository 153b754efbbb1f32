package domain

import (
	"context"
	"image"
	"time"
)

// Rasterizer turns an input document into an ordered sequence of page
// rasters, one per logical page, preserving source order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string) (*RasterOutput, error)
}

// Recognizer is a narrow text-recognition capability: raster image in,
// recognized text out. Implementations must be safe for concurrent use, or be
// wrapped so that access to them is serialized.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// TableProvider extracts tabular row records from a PDF-backed document.
// It is expected to degrade to an empty result rather than fail the pipeline.
type TableProvider interface {
	ExtractTables(ctx context.Context, pdfPath string) ([]TableRecord, error)
}

// ResultRepository persists an assembled Result and returns its location.
type ResultRepository interface {
	Save(ctx context.Context, result *Result) (string, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetOutputPath() string
	GetMaxFileSize() int64
	GetLogLevel() string

	GetRasterDPI() float64
	GetSofficePath() string

	GetOCRLanguages() []string
	GetOCRMode() string
	GetMinTextLength() int

	GetPageWorkers() int
	GetProcessTimeout() time.Duration
	GetContactDedup() bool

	GetVertexProjectID() string
	GetVertexLocation() string
	GetVertexModel() string

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseBucket() string
}
