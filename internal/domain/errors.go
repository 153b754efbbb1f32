package domain

import "errors"

// Domain errors
var (
	// ErrUnsupportedFormat is fatal: the input file extension is not one of
	// the supported document formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrConversionFailed is fatal: the slide-deck-to-PDF conversion step
	// failed before rasterization could start.
	ErrConversionFailed = errors.New("document conversion failed")

	// ErrRecognitionDegraded is non-fatal: a recognition capability failed or
	// returned empty output and fusion fell back to the next one.
	ErrRecognitionDegraded = errors.New("recognition degraded")

	ErrInvalidFile = errors.New("invalid file")
)
