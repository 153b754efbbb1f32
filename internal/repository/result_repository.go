package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"document-insight/internal/domain"
)

// FileResultRepository persists assembled results as pretty-printed JSON at a
// fixed path, overwriting the previous run's output.
type FileResultRepository struct {
	outputPath string
	logger     domain.Logger
}

func NewFileResultRepository(config domain.Config, logger domain.Logger) *FileResultRepository {
	return &FileResultRepository{
		outputPath: config.GetOutputPath(),
		logger:     logger,
	}
}

// Save writes the result atomically: a temp file in the target directory is
// renamed over the destination, so a crashed run never leaves a truncated
// output behind.
func (r *FileResultRepository) Save(ctx context.Context, result *domain.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	dir := filepath.Dir(r.outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".output-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp output file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize result file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.outputPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move result into place: %w", err)
	}

	r.logger.Debug("result written", "path", r.outputPath, "bytes", len(data))
	return r.outputPath, nil
}
