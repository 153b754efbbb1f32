// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"document-insight/internal/domain"
	"document-insight/internal/service"
	apperrors "document-insight/pkg/errors"

	"github.com/google/uuid"
)

// ProcessHandler handles document processing requests
type ProcessHandler struct {
	pipeline    *service.Pipeline
	uploadPath  string
	maxFileSize int64
	logger      domain.Logger
}

// NewProcessHandler creates a new document processing handler
func NewProcessHandler(pipeline *service.Pipeline, config domain.Config, logger domain.Logger) *ProcessHandler {
	return &ProcessHandler{
		pipeline:    pipeline,
		uploadPath:  config.GetUploadPath(),
		maxFileSize: config.GetMaxFileSize(),
		logger:      logger,
	}
}

// Process accepts a multipart upload ("file" plus an optional comma-separated
// "keywords" field), runs the pipeline on it, and returns the assembled
// result. The upload is staged to disk for the duration of the request.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		appErr := apperrors.NewValidationError("File is required")
		writeError(w, appErr.StatusCode, appErr.Message)
		return
	}
	defer file.Close()

	keywords := service.ParseKeywords(r.FormValue("keywords"))

	stagedPath, err := h.stageUpload(file, header.Filename)
	if err != nil {
		h.logger.Error("failed to stage upload", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	defer os.Remove(stagedPath)

	result, err := h.pipeline.Process(r.Context(), stagedPath, keywords)
	if err != nil {
		h.logger.Error("document processing failed", err, "filename", header.Filename)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// stageUpload copies the uploaded content to the upload directory under a
// unique name, keeping the original extension so the rasterizer can classify
// the format.
func (h *ProcessHandler) stageUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadPath, 0o755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	stagedPath := filepath.Join(h.uploadPath, uuid.New().String()+ext)

	out, err := os.Create(stagedPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(stagedPath)
		return "", err
	}
	return stagedPath, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConversionFailed):
		return http.StatusUnprocessableEntity
	default:
		return apperrors.GetStatusCode(err)
	}
}
