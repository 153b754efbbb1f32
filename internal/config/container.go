package config

import (
	"context"

	"document-insight/internal/domain"
	"document-insight/internal/infra/tesseract"
	"document-insight/internal/infra/vertex"
	"document-insight/internal/repository"
	"document-insight/internal/service"
	"document-insight/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config   domain.Config
	Logger   domain.Logger
	Pipeline *service.Pipeline
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Primary recognition capability. Failure here is fatal; the pipeline
	// cannot run without at least one recognizer.
	tessRecognizer, err := tesseract.NewRecognizer(config.GetOCRLanguages())
	if err != nil {
		return nil, err
	}

	capabilities := []service.Capability{
		{Recognizer: tessRecognizer, Variant: domain.VariantBinary},
	}

	// Optional model-based fallback, configured per environment.
	if config.GetVertexProjectID() != "" {
		vertexRecognizer, err := vertex.NewRecognizer(
			context.Background(),
			config.GetVertexProjectID(),
			config.GetVertexLocation(),
			config.GetVertexModel(),
		)
		if err != nil {
			appLogger.Warn("vertex recognizer unavailable, continuing without fallback", "error", err.Error())
		} else {
			capabilities = append(capabilities, service.Capability{
				Recognizer: service.NewSerialRecognizer(vertexRecognizer),
				Variant:    domain.VariantGray,
			})
		}
	}

	fusion := service.NewFusionEngine(
		capabilities,
		config.GetMinTextLength(),
		service.ParseFusionMode(config.GetOCRMode()),
		appLogger,
	)

	resultRepo := repository.NewFileResultRepository(config, appLogger)

	var mirror domain.ResultRepository
	if config.GetSupabaseURL() != "" && config.GetSupabaseKey() != "" {
		supabaseRepo, err := repository.NewSupabaseResultRepository(config, appLogger)
		if err != nil {
			appLogger.Warn("result mirror unavailable", "error", err.Error())
		} else {
			mirror = supabaseRepo
		}
	}

	pipeline := service.NewPipeline(
		service.NewRasterizer(config, appLogger),
		service.NewPreprocessor(),
		fusion,
		service.NewLayoutAnalyzer(),
		service.NewFieldExtractor(config.GetContactDedup()),
		service.NewPDFTableExtractor(appLogger),
		resultRepo,
		mirror,
		config,
		appLogger,
	)

	return &Container{
		Config:   config,
		Logger:   appLogger,
		Pipeline: pipeline,
	}, nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
