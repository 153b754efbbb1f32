package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"document-insight/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort  string
	UploadPath  string
	OutputPath  string
	MaxFileSize int64
	LogLevel    string

	RasterDPI   float64
	SofficePath string

	OCRLanguages []string
	OCRMode      string
	MinTextLen   int

	PageWorkers    int
	ProcessTimeout time.Duration
	ContactDedup   bool

	VertexProjectID string
	VertexLocation  string
	VertexModel     string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:  getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		OutputPath:  getEnvOrDefault("OUTPUT_PATH", "outputs/output.json"),
		MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),

		RasterDPI:   getEnvFloatOrDefault("RASTER_DPI", 200),
		SofficePath: getEnvOrDefault("SOFFICE_PATH", "soffice"),

		OCRLanguages: splitCSV(getEnvOrDefault("OCR_LANGUAGES", "eng")),
		OCRMode:      getEnvOrDefault("OCR_MODE", "fallback"),
		MinTextLen:   getEnvIntOrDefault("MIN_TEXT_LEN", 40),

		PageWorkers:    getEnvIntOrDefault("PAGE_WORKERS", 4),
		ProcessTimeout: getEnvDurationOrDefault("PROCESS_TIMEOUT", 5*time.Minute),
		ContactDedup:   getEnvBoolOrDefault("CONTACT_DEDUP", false),

		VertexProjectID: getEnvOrDefault("VERTEX_PROJECT_ID", ""),
		VertexLocation:  getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
		VertexModel:     getEnvOrDefault("VERTEX_MODEL", "gemini-2.0-flash-001"),

		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseBucket: getEnvOrDefault("SUPABASE_BUCKET", "results"),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetOutputPath returns the fixed, well-known result output location
func (c *AppConfig) GetOutputPath() string {
	return c.OutputPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetRasterDPI returns the resolution PDF pages are rasterized at
func (c *AppConfig) GetRasterDPI() float64 {
	return c.RasterDPI
}

// GetSofficePath returns the LibreOffice binary used for slide-deck conversion
func (c *AppConfig) GetSofficePath() string {
	return c.SofficePath
}

// GetOCRLanguages returns the tesseract language codes
func (c *AppConfig) GetOCRLanguages() []string {
	return c.OCRLanguages
}

// GetOCRMode returns the fusion mode ("fallback" or "concat")
func (c *AppConfig) GetOCRMode() string {
	return c.OCRMode
}

// GetMinTextLength returns the non-whitespace length below which a
// recognition result is considered too short and the next capability is tried
func (c *AppConfig) GetMinTextLength() int {
	return c.MinTextLen
}

// GetPageWorkers returns the bounded per-page worker count
func (c *AppConfig) GetPageWorkers() int {
	return c.PageWorkers
}

// GetProcessTimeout returns the whole-document processing deadline
func (c *AppConfig) GetProcessTimeout() time.Duration {
	return c.ProcessTimeout
}

// GetContactDedup reports whether contact lists are deduplicated
func (c *AppConfig) GetContactDedup() bool {
	return c.ContactDedup
}

// GetVertexProjectID returns the GCP project backing the vision recognizer
func (c *AppConfig) GetVertexProjectID() string {
	return c.VertexProjectID
}

// GetVertexLocation returns the Vertex AI region
func (c *AppConfig) GetVertexLocation() string {
	return c.VertexLocation
}

// GetVertexModel returns the generative model used for vision transcription
func (c *AppConfig) GetVertexModel() string {
	return c.VertexModel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseBucket returns the storage bucket results are mirrored to
func (c *AppConfig) GetSupabaseBucket() string {
	return c.SupabaseBucket
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
